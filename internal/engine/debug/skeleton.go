package debug

import (
	"github.com/Faultbox/md5kit/pkg/formats"
	"github.com/Faultbox/md5kit/pkg/math"
)

// SkeletonLines returns one line per non-root joint, from the parent's origin
// to the joint's origin, transformed by localToWorld. Format: [x, y, z] per
// vertex, two vertices per line.
func SkeletonLines(joints formats.Hierarchy, pose []formats.MD5Key, localToWorld math.Mat4) []float32 {
	var lines []float32
	joints.Walk(func(id int) {
		parent := joints[id].Parent
		if parent < 0 {
			return
		}
		a := localToWorld.TransformPoint(pose[parent].Origin)
		b := localToWorld.TransformPoint(pose[id].Origin)
		lines = append(lines, a.X, a.Y, a.Z, b.X, b.Y, b.Z)
	})
	return lines
}

// JointAxes returns three short lines per joint along its local X, Y and Z
// axes. Format matches SkeletonLines.
func JointAxes(pose []formats.MD5Key, length float32, localToWorld math.Mat4) []float32 {
	lines := make([]float32, 0, len(pose)*18)
	for _, key := range pose {
		o := localToWorld.TransformPoint(key.Origin)
		for _, axis := range []math.Vec3{{X: length}, {Y: length}, {Z: length}} {
			tip := localToWorld.TransformPoint(key.Orientation.TransformPoint(axis).Add(key.Origin))
			lines = append(lines, o.X, o.Y, o.Z, tip.X, tip.Y, tip.Z)
		}
	}
	return lines
}
