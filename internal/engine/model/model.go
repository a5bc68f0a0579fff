package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Faultbox/md5kit/internal/engine/picking"
	"github.com/Faultbox/md5kit/internal/engine/skeleton"
	"github.com/Faultbox/md5kit/pkg/formats"
)

// ErrJointMismatch is returned when an animation does not fit a mesh skeleton.
var ErrJointMismatch = errors.New("animation does not match mesh joints")

// Options configures a model instance.
type Options struct {
	Filename  string        // File name of the mesh, e.g. "imp.md5mesh"
	ModelPath string        // VFS path of the mesh
	Mode      skeleton.Mode // Pose evaluation mode used by UpdateAnim
	Loop      bool          // Loop frame playback
}

// Model is an instance of a parsed MD5 mesh: its surfaces, the active skin
// and the animation driving it. Parsed data is shared between instances, the
// skinned buffers are not.
type Model struct {
	id        uuid.UUID
	filename  string
	modelPath string

	joints   formats.Hierarchy
	bindPose []formats.MD5Key
	surfaces []*Surface
	bounds   picking.AABB

	vertexCount int
	polyCount   int
	materials   []string

	anim     *formats.MD5Anim
	skeleton *skeleton.Skeleton
}

// NewModel creates an instance of md5 posed in its bind pose.
func NewModel(md5 *formats.MD5Mesh, opts Options) *Model {
	m := &Model{
		id:        uuid.New(),
		filename:  opts.Filename,
		modelPath: opts.ModelPath,
		joints:    md5.Joints,
		bindPose:  md5.BindPose,
		surfaces:  make([]*Surface, 0, len(md5.Meshes)),
		skeleton:  skeleton.New(opts.Mode),
	}
	m.skeleton.SetLoop(opts.Loop)

	for _, mesh := range md5.Meshes {
		s := NewSurface(mesh)
		s.UpdateToDefaultPose(m.bindPose)
		m.surfaces = append(m.surfaces, s)

		m.vertexCount += s.NumVertices()
		m.polyCount += s.NumTriangles()
	}

	m.updateBounds()
	m.updateMaterialList()
	return m
}

// Clone returns a new instance sharing the parsed mesh data. Surfaces get
// their own buffers posed in the bind pose and revert to default materials;
// the animation is not carried over.
func (m *Model) Clone() *Model {
	c := &Model{
		id:          uuid.New(),
		filename:    m.filename,
		modelPath:   m.modelPath,
		joints:      m.joints,
		bindPose:    m.bindPose,
		surfaces:    make([]*Surface, len(m.surfaces)),
		vertexCount: m.vertexCount,
		polyCount:   m.polyCount,
		skeleton:    skeleton.New(m.skeleton.Mode()),
	}
	c.skeleton.SetLoop(m.skeleton.Loop())

	for i, s := range m.surfaces {
		c.surfaces[i] = s.Clone()
		c.surfaces[i].UpdateToDefaultPose(c.bindPose)
	}

	c.updateBounds()
	c.updateMaterialList()
	return c
}

// ID returns the unique instance ID.
func (m *Model) ID() uuid.UUID {
	return m.id
}

// Filename returns the mesh file name.
func (m *Model) Filename() string {
	return m.filename
}

// ModelPath returns the VFS path of the mesh.
func (m *Model) ModelPath() string {
	return m.modelPath
}

// Joints returns the joint hierarchy.
func (m *Model) Joints() formats.Hierarchy {
	return m.joints
}

// BindPose returns the object-space bind pose keys.
func (m *Model) BindPose() []formats.MD5Key {
	return m.bindPose
}

// SurfaceCount returns the number of surfaces.
func (m *Model) SurfaceCount() int {
	return len(m.surfaces)
}

// Surface returns surface i.
func (m *Model) Surface(i int) *Surface {
	return m.surfaces[i]
}

// VertexCount returns the total vertex count.
func (m *Model) VertexCount() int {
	return m.vertexCount
}

// PolyCount returns the total triangle count.
func (m *Model) PolyCount() int {
	return m.polyCount
}

// Bounds returns the union of the surface bounds.
func (m *Model) Bounds() picking.AABB {
	return m.bounds
}

// ActiveMaterials returns the active material of every surface, in order.
func (m *Model) ActiveMaterials() []string {
	return m.materials
}

// ApplySkin remaps surface materials. A surface whose default material has a
// remap uses it; every other surface reverts to its default. Geometry is
// untouched.
func (m *Model) ApplySkin(skin Skin) {
	for _, s := range m.surfaces {
		remap := skin.Remap(s.DefaultMaterial())

		switch {
		case remap != "" && remap != s.ActiveMaterial():
			s.SetActiveMaterial(remap)
		case remap == "" && s.ActiveMaterial() != s.DefaultMaterial():
			s.SetActiveMaterial("")
		}
	}

	m.updateMaterialList()
}

// SetAnim sets the animation played by UpdateAnim. A nil animation returns
// every surface to the bind pose. An animation whose joint count differs from
// the mesh is rejected and the current animation is kept.
func (m *Model) SetAnim(anim *formats.MD5Anim) error {
	if anim != nil && len(anim.Joints) != len(m.joints) {
		return fmt.Errorf("%w: mesh has %d joints, animation has %d", ErrJointMismatch, len(m.joints), len(anim.Joints))
	}

	m.anim = anim

	if anim == nil {
		for _, s := range m.surfaces {
			s.UpdateToDefaultPose(m.bindPose)
		}
		m.updateBounds()
	}
	return nil
}

// Anim returns the current animation, or nil.
func (m *Model) Anim() *formats.MD5Anim {
	return m.anim
}

// Skeleton returns the skeleton evaluated by the last UpdateAnim.
func (m *Model) Skeleton() *skeleton.Skeleton {
	return m.skeleton
}

// UpdateAnim poses the skeleton at t and re-skins every surface. It does
// nothing without an animation.
func (m *Model) UpdateAnim(t time.Duration) {
	if m.anim == nil {
		return
	}

	m.skeleton.Update(m.anim, t)
	for _, s := range m.surfaces {
		s.UpdateToSkeleton(m.skeleton)
	}
	m.updateBounds()
}

func (m *Model) updateBounds() {
	m.bounds = picking.EmptyAABB()
	for _, s := range m.surfaces {
		m.bounds = m.bounds.Union(s.Bounds())
	}
}

func (m *Model) updateMaterialList() {
	m.materials = make([]string, 0, len(m.surfaces))
	for _, s := range m.surfaces {
		m.materials = append(m.materials, s.ActiveMaterial())
	}
}
