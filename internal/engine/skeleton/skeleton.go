// Package skeleton evaluates MD5 joint poses.
package skeleton

import (
	"errors"
	"fmt"
	"time"

	"github.com/Faultbox/md5kit/pkg/formats"
)

// Mode selects how local joint keys are produced.
type Mode int

const (
	// ModeBindPose builds every pose from the animation's base frame. The
	// time value is ignored, so playback is static.
	ModeBindPose Mode = iota
	// ModeFrames samples the animated components at time and interpolates
	// between neighbouring frames.
	ModeFrames
)

// String returns the config name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeBindPose:
		return "bind"
	case ModeFrames:
		return "frames"
	default:
		return "unknown"
	}
}

// ErrUnknownMode is returned by ParseMode for names other than "bind" and "frames".
var ErrUnknownMode = errors.New("unknown pose mode")

// ParseMode converts a config name to a Mode. An empty name selects ModeBindPose.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "", "bind":
		return ModeBindPose, nil
	case "frames":
		return ModeFrames, nil
	default:
		return ModeBindPose, fmt.Errorf("%w %q (want bind or frames)", ErrUnknownMode, name)
	}
}

// Skeleton holds the object-space key of every joint for one model instance.
type Skeleton struct {
	mode Mode
	loop bool
	pose []formats.MD5Key
}

// New creates an empty skeleton. Frame playback loops by default.
func New(mode Mode) *Skeleton {
	return &Skeleton{mode: mode, loop: true}
}

// SetLoop controls whether ModeFrames wraps past the last frame.
func (s *Skeleton) SetLoop(loop bool) {
	s.loop = loop
}

// Loop reports whether ModeFrames wraps past the last frame.
func (s *Skeleton) Loop() bool {
	return s.loop
}

// Evaluate returns a new skeleton posed from anim at t.
func Evaluate(anim *formats.MD5Anim, t time.Duration, mode Mode) *Skeleton {
	s := New(mode)
	s.Update(anim, t)
	return s
}

// Mode returns the evaluation mode.
func (s *Skeleton) Mode() Mode {
	return s.mode
}

// Len returns the number of joints in the current pose.
func (s *Skeleton) Len() int {
	return len(s.pose)
}

// Key returns the object-space key of joint.
func (s *Skeleton) Key(joint int) formats.MD5Key {
	return s.pose[joint]
}

// Pose returns the object-space keys. The slice is owned by the skeleton and
// is overwritten by the next Update.
func (s *Skeleton) Pose() []formats.MD5Key {
	return s.pose
}

// Update recomputes the pose from anim at t. Joints are visited depth-first
// so every parent is posed before its children.
func (s *Skeleton) Update(anim *formats.MD5Anim, t time.Duration) {
	if cap(s.pose) < len(anim.Joints) {
		s.pose = make([]formats.MD5Key, len(anim.Joints))
	}
	s.pose = s.pose[:len(anim.Joints)]

	local := s.localKeys(anim, t)
	anim.Joints.Walk(func(id int) {
		key := local(id)
		if parent := anim.Joints[id].Parent; parent >= 0 {
			p := s.pose[parent]
			key.Orientation = p.Orientation.Mul(key.Orientation)
			key.Origin = p.Orientation.TransformPoint(key.Origin).Add(p.Origin)
		}
		s.pose[id] = key
	})
}

// localKeys returns the parent-space key source for the current mode.
func (s *Skeleton) localKeys(anim *formats.MD5Anim, t time.Duration) func(int) formats.MD5Key {
	if s.mode != ModeFrames || anim.NumFrames() == 0 {
		return func(id int) formats.MD5Key {
			return anim.BaseFrame[id]
		}
	}

	f := SampleFrames(anim, t, s.loop)
	return func(id int) formats.MD5Key {
		return f.Key(anim, id)
	}
}
