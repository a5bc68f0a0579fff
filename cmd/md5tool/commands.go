package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/md5kit/internal/assets"
	"github.com/Faultbox/md5kit/internal/config"
	"github.com/Faultbox/md5kit/internal/engine/camera"
	"github.com/Faultbox/md5kit/internal/engine/debug"
	"github.com/Faultbox/md5kit/internal/engine/model"
	"github.com/Faultbox/md5kit/internal/engine/picking"
	"github.com/Faultbox/md5kit/internal/logger"
	"github.com/Faultbox/md5kit/pkg/formats"
	"github.com/Faultbox/md5kit/pkg/math"
	"github.com/Faultbox/md5kit/pkg/pk4"
)

// loadModel loads the mesh at path with the configured animation options.
func (e *env) loadModel(path string) *model.Model {
	m, err := e.manager.LoadModel(path, e.cfg.ModelOptions())
	if err != nil {
		e.fail("Error: %v", err)
	}
	return m
}

// pose attaches the animation at path to m and evaluates it at t.
func (e *env) pose(m *model.Model, path string, t float64) *formats.MD5Anim {
	anim, err := e.manager.LoadAnim(path)
	if err != nil {
		e.fail("Error: %v", err)
	}
	if err := m.SetAnim(anim); err != nil {
		e.fail("Error: %s: %v", path, err)
	}
	m.UpdateAnim(seconds(t))
	return anim
}

func cmdInfo(args []string) {
	e, fs := setup("info", args, nil)
	defer e.close()

	if fs.NArg() < 1 {
		e.fail("Usage: md5tool info [options] <mesh>")
	}
	m := e.loadModel(fs.Arg(0))

	fmt.Printf("Model:    %s\n", m.ModelPath())
	fmt.Printf("Joints:   %d\n", len(m.Joints()))
	fmt.Printf("Surfaces: %d\n", m.SurfaceCount())
	fmt.Printf("Vertices: %d\n", m.VertexCount())
	fmt.Printf("Polygons: %d\n", m.PolyCount())
	printBounds(m.Bounds())

	fmt.Println()
	fmt.Println("Joints:")
	printHierarchy(m.Joints(), m.BindPose())

	fmt.Println()
	fmt.Println("Surfaces:")
	for i := 0; i < m.SurfaceCount(); i++ {
		s := m.Surface(i)
		fmt.Printf("  %2d  %-40s %5d verts %5d tris\n", i, s.DefaultMaterial(), s.NumVertices(), s.NumTriangles())
	}

	if mesh := model.BuildMesh(m, model.BuildOptions{}); mesh != nil {
		fmt.Println()
		fmt.Println("Draw groups:")
		for _, g := range mesh.Groups {
			fmt.Printf("  %-40s %6d indices from %d\n", g.Material, g.IndexCount, g.StartIndex)
		}
	}
}

func printBounds(b picking.AABB) {
	if b.IsEmpty() {
		fmt.Println("Bounds:   (empty)")
		return
	}
	fmt.Printf("Bounds:   (%g %g %g) - (%g %g %g)\n", b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
}

// printHierarchy prints joints depth-first, indented by depth.
func printHierarchy(joints formats.Hierarchy, pose []formats.MD5Key) {
	depth := make([]int, len(joints))
	joints.Walk(func(id int) {
		if p := joints[id].Parent; p >= 0 {
			depth[id] = depth[p] + 1
		}
		o := pose[id].Origin
		fmt.Printf("  %3d %s%-*s (%g %g %g)\n", id, strings.Repeat("  ", depth[id]),
			24-2*depth[id], joints[id].Name, o.X, o.Y, o.Z)
	})
}

func cmdList(args []string) {
	e, fs := setup("list", args, nil)
	defer e.close()

	pattern := ""
	if fs.NArg() > 0 {
		pattern = strings.ToLower(fs.Arg(0))
	}

	files := append(e.manager.List(".md5mesh"), e.manager.List(".md5anim")...)
	sort.Strings(files)

	count := 0
	for _, f := range files {
		if pattern != "" {
			matched, _ := filepath.Match(pattern, filepath.Base(f))
			if !matched && !strings.Contains(f, pattern) {
				continue
			}
		}
		fmt.Println(f)
		count++
	}

	fmt.Fprintf(os.Stderr, "\n(%d files in %d sources)\n", count, len(e.manager.Sources()))
}

func cmdAnim(args []string) {
	var t float64
	e, fs := setup("anim", args, func(fs *flag.FlagSet) {
		fs.Float64Var(&t, "t", 0, "Time in seconds")
	})
	defer e.close()

	if fs.NArg() < 2 {
		e.fail("Usage: md5tool anim [options] <mesh> <anim>")
	}
	m := e.loadModel(fs.Arg(0))
	anim := e.pose(m, fs.Arg(1), t)

	fmt.Printf("Animation: %s\n", fs.Arg(1))
	fmt.Printf("Frames:    %d at %d fps (%v)\n", anim.NumFrames(), anim.FrameRate, anim.Duration())
	fmt.Printf("Mode:      %s (loop %v)\n", m.Skeleton().Mode(), m.Skeleton().Loop())
	fmt.Printf("Time:      %v\n", seconds(t))
	printBounds(m.Bounds())

	fmt.Println()
	fmt.Println("Pose:")
	printHierarchy(anim.Joints, m.Skeleton().Pose())
}

func cmdSkin(args []string) {
	e, fs := setup("skin", args, nil)
	defer e.close()

	if fs.NArg() < 1 {
		e.fail("Usage: md5tool skin [options] <mesh> [name]")
	}
	m := e.loadModel(fs.Arg(0))

	if fs.NArg() < 2 {
		fmt.Println("Skins:")
		for _, name := range e.cfg.SkinNames() {
			fmt.Printf("  %s\n", name)
		}
		return
	}

	skin := e.cfg.Skin(fs.Arg(1))
	if skin == nil {
		e.fail("Unknown skin: %s", fs.Arg(1))
	}
	m.ApplySkin(skin)

	for i := 0; i < m.SurfaceCount(); i++ {
		s := m.Surface(i)
		marker := " "
		if s.ActiveMaterial() != s.DefaultMaterial() {
			marker = "*"
		}
		fmt.Printf("%s %2d  %s -> %s\n", marker, i, s.DefaultMaterial(), s.ActiveMaterial())
	}
}

func cmdPick(args []string) {
	var (
		eye, at, animPath string
		t, fov            float64
		yaw, pitch        float64
		x, y              float64
	)
	e, fs := setup("pick", args, func(fs *flag.FlagSet) {
		fs.StringVar(&eye, "eye", "", "Ray origin x,y,z (default: orbit camera fitted to the model)")
		fs.StringVar(&at, "at", "", "Point the ray passes through x,y,z, used with -eye")
		fs.Float64Var(&yaw, "yaw", 0, "Orbit camera yaw in degrees")
		fs.Float64Var(&pitch, "pitch", 15, "Orbit camera pitch in degrees")
		fs.Float64Var(&x, "x", 0.5, "Horizontal viewport position, 0 = left, 1 = right")
		fs.Float64Var(&y, "y", 0.5, "Vertical viewport position, 0 = top, 1 = bottom")
		fs.Float64Var(&fov, "fov", 90, "Vertical field of view in degrees")
		fs.StringVar(&animPath, "anim", "", "Animation to pose the mesh with")
		fs.Float64Var(&t, "t", 0, "Time in seconds")
	})
	defer e.close()

	if fs.NArg() < 1 {
		e.fail("Usage: md5tool pick [options] <mesh>")
	}

	m := e.loadModel(fs.Arg(0))
	if animPath != "" {
		e.pose(m, animPath, t)
	}

	cam := camera.NewOrbitCamera()
	cam.FovY = float32(fov) * math32.Pi / 180
	cam.Yaw = float32(yaw) * math32.Pi / 180
	cam.Pitch = float32(pitch) * math32.Pi / 180
	cam.FitToBounds(m.Bounds())
	ray := cam.Ray(float32(x), float32(y))
	volume := picking.Volume(cam.Frustum())

	if eye != "" {
		from, err := parseVec3(eye)
		if err != nil {
			e.fail("Bad -eye: %v", err)
		}
		to := cam.Center
		if at != "" {
			if to, err = parseVec3(at); err != nil {
				e.fail("Bad -at: %v", err)
			}
		}
		ray = picking.NewRay(from, to)

		up := math.Vec3{Z: 1}
		if math32.Abs(ray.Direction.Dot(up)) > 0.999 {
			up = math.Vec3{Y: 1}
		}
		proj := math.Perspective(cam.FovY, 1, 0.1, 100000)
		volume = picking.NewFrustum(proj.Mul(math.LookAt(from, to, up)))
	}

	fmt.Printf("Ray: (%g %g %g) dir (%g %g %g)\n", ray.Origin.X, ray.Origin.Y, ray.Origin.Z,
		ray.Direction.X, ray.Direction.Y, ray.Direction.Z)

	hits := m.TestSelect(volume, ray, math.Identity())
	if len(hits) == 0 {
		fmt.Println("No hit")
		return
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Dist2 < hits[j].Dist2 })

	for _, h := range hits {
		s := m.Surface(h.Surface)
		fmt.Printf("  %2d  %-40s (%g %g %g) dist %g\n", h.Surface, s.ActiveMaterial(),
			h.Point.X, h.Point.Y, h.Point.Z, math32.Sqrt(h.Dist2))
	}
}

func cmdExport(args []string) {
	var (
		animPath, skinName string
		t, axes            float64
		withSkeleton       bool
		withBounds         bool
	)
	e, fs := setup("export", args, func(fs *flag.FlagSet) {
		fs.StringVar(&animPath, "anim", "", "Animation to pose the mesh with")
		fs.Float64Var(&t, "t", 0, "Time in seconds")
		fs.StringVar(&skinName, "skin", "", "Configured skin to apply")
		fs.BoolVar(&withSkeleton, "skeleton", false, "Append the skeleton as line elements")
		fs.BoolVar(&withBounds, "bounds", false, "Append the bounding box as line elements")
		fs.Float64Var(&axes, "axes", 0, "Append joint axes of this length as line elements")
	})
	defer e.close()

	if fs.NArg() < 1 {
		e.fail("Usage: md5tool export [options] <mesh> [out.obj]")
	}
	m := e.loadModel(fs.Arg(0))

	if skinName != "" {
		skin := e.cfg.Skin(skinName)
		if skin == nil {
			e.fail("Unknown skin: %s", skinName)
		}
		m.ApplySkin(skin)
	}

	pose := m.BindPose()
	if animPath != "" {
		e.pose(m, animPath, t)
		pose = m.Skeleton().Pose()
	}

	out := os.Stdout
	if fs.NArg() > 1 {
		f, err := os.Create(fs.Arg(1))
		if err != nil {
			e.fail("Error creating output: %v", err)
		}
		defer f.Close()
		out = f
	}

	if err := model.WriteOBJ(out, m, e.cfg.ExportOptions()); err != nil {
		e.fail("Error writing OBJ: %v", err)
	}

	// Line objects continue the global vertex numbering of the mesh
	base := m.VertexCount() + 1
	if withSkeleton {
		lines := debug.SkeletonLines(m.Joints(), pose, math.Identity())
		if err := writeLines(out, "skeleton", lines, base); err != nil {
			e.fail("Error writing skeleton: %v", err)
		}
		base += len(lines) / 3
	}
	if axes > 0 {
		lines := debug.JointAxes(pose, float32(axes), math.Identity())
		if err := writeLines(out, "axes", lines, base); err != nil {
			e.fail("Error writing axes: %v", err)
		}
		base += len(lines) / 3
	}
	if withBounds {
		lines := debug.BoundsWireframe(m.Bounds(), math.Identity(), 0)
		if err := writeLines(out, "bounds", lines, base); err != nil {
			e.fail("Error writing bounds: %v", err)
		}
	}

	if out != os.Stdout {
		fmt.Fprintf(os.Stderr, "Exported: %s (%d vertices, %d triangles)\n", fs.Arg(1), m.VertexCount(), m.PolyCount())
	}
}

func cmdWatch(args []string) {
	e, fs := setup("watch", args, nil)
	defer e.close()

	if fs.NArg() < 1 {
		e.fail("Usage: md5tool watch [options] <mesh>")
	}
	path := fs.Arg(0)
	m := e.loadModel(path)
	fmt.Printf("%s: %d surfaces, %d vertices\n", path, m.SurfaceCount(), m.VertexCount())

	w, err := assets.NewWatcher(e.manager)
	if err != nil {
		e.fail("Error: %v", err)
	}
	w.OnChange = func(changed string) {
		if changed != pk4.NormalizePath(path) {
			return
		}
		m, err := e.manager.LoadModel(path, e.cfg.ModelOptions())
		if err != nil {
			logger.Warn("reload failed", zap.String("path", path), zap.Error(err))
			return
		}
		fmt.Printf("%s: %d surfaces, %d vertices\n", path, m.SurfaceCount(), m.VertexCount())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		e.fail("Error: %v", err)
	}
}

func cmdConfig(args []string) {
	var out string
	e, _ := setup("config", args, func(fs *flag.FlagSet) {
		fs.StringVar(&out, "o", "", "Write to this file instead of the user config directory")
	})
	defer e.close()

	var err error
	if out == "" {
		out = filepath.Join(config.ConfigDir(), "config.yaml")
		err = e.cfg.Save()
	} else {
		err = e.cfg.SaveTo(out)
	}
	if err != nil {
		e.fail("Error: %v", err)
	}
	fmt.Printf("Config written to %s\n", out)
}

// writeLines appends an OBJ object of line elements. lines holds pairs of
// xyz points; base is the OBJ index of the first point.
func writeLines(w io.Writer, name string, lines []float32, base int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "\no %s\n", name)
	for i := 0; i+2 < len(lines); i += 3 {
		fmt.Fprintf(bw, "v %g %g %g\n", lines[i], lines[i+1], lines[i+2])
	}
	for i := 0; i+1 < len(lines)/3; i += 2 {
		fmt.Fprintf(bw, "l %d %d\n", base+i, base+i+1)
	}
	return bw.Flush()
}
