package skeleton

import (
	"time"

	"github.com/Faultbox/md5kit/pkg/formats"
)

// FrameSample locates a time value between two animation frames.
type FrameSample struct {
	Frame int     // Frame at or before the sample time
	Next  int     // Frame after Frame
	Blend float32 // 0 at Frame, approaching 1 at Next
}

// SampleFrames converts t to a frame pair. With loop set the animation wraps
// and the last frame blends back into the first; otherwise t is clamped to
// the last frame.
func SampleFrames(anim *formats.MD5Anim, t time.Duration, loop bool) FrameSample {
	n := anim.NumFrames()
	if n == 0 || anim.FrameRate <= 0 || t <= 0 {
		return FrameSample{}
	}

	pos := float64(t) * float64(anim.FrameRate) / float64(time.Second)
	frame := int(pos)
	blend := float32(pos - float64(frame))

	if loop {
		frame %= n
		return FrameSample{Frame: frame, Next: (frame + 1) % n, Blend: blend}
	}

	// If at or past last frame, hold it
	if frame >= n-1 {
		return FrameSample{Frame: n - 1, Next: n - 1}
	}
	return FrameSample{Frame: frame, Next: frame + 1, Blend: blend}
}

// Key returns the interpolated parent-space key of joint.
func (f FrameSample) Key(anim *formats.MD5Anim, joint int) formats.MD5Key {
	k0 := anim.LocalKey(f.Frame, joint)
	if f.Blend == 0 || f.Frame == f.Next {
		return k0
	}

	k1 := anim.LocalKey(f.Next, joint)
	return formats.MD5Key{
		Origin:      k0.Origin.Lerp(k1.Origin, f.Blend),
		Orientation: k0.Orientation.Slerp(k1.Orientation, f.Blend),
	}
}
