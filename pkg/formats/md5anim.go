package formats

import (
	"fmt"
	"math/bits"
	"os"
	"time"

	"github.com/Faultbox/md5kit/pkg/math"
	"github.com/Faultbox/md5kit/pkg/parser"
)

// MD5Anim represents a parsed .md5anim file. It is immutable after parsing and
// may be shared by any number of skeletons.
type MD5Anim struct {
	CommandLine           string
	FrameRate             int
	NumAnimatedComponents int
	Joints                Hierarchy
	Bounds                []MD5Bounds // One per frame
	BaseFrame             []MD5Key    // One per joint, parent space
	Frames                [][]float32 // NumAnimatedComponents values per frame
}

// NumFrames returns the number of frames.
func (a *MD5Anim) NumFrames() int {
	return len(a.Frames)
}

// Duration returns the length of one playback of the animation.
func (a *MD5Anim) Duration() time.Duration {
	if a.FrameRate <= 0 {
		return 0
	}
	return time.Duration(len(a.Frames)) * time.Second / time.Duration(a.FrameRate)
}

// LocalKey returns the parent-space key of joint at frame: the base frame key
// with every animated component replaced by the frame's value.
func (a *MD5Anim) LocalKey(frame, joint int) MD5Key {
	base := a.BaseFrame[joint]
	j := &a.Joints[joint]
	if j.Components == 0 {
		return base
	}

	origin := base.Origin
	raw := math.Vec3{X: base.Orientation.X, Y: base.Orientation.Y, Z: base.Orientation.Z}
	values := a.Frames[frame][j.FirstKey:]

	n := 0
	for _, c := range []struct {
		bit uint32
		dst *float32
	}{
		{ComponentX, &origin.X},
		{ComponentY, &origin.Y},
		{ComponentZ, &origin.Z},
		{ComponentYaw, &raw.X},
		{ComponentPitch, &raw.Y},
		{ComponentRoll, &raw.Z},
	} {
		if j.Components&c.bit != 0 {
			*c.dst = values[n]
			n++
		}
	}

	return MD5Key{Origin: origin, Orientation: math.QuatFromRawRotation(raw)}
}

// ParseMD5Anim parses .md5anim text.
func ParseMD5Anim(data []byte) (*MD5Anim, error) {
	return ReadMD5Anim(parser.NewDefTokenizer(data))
}

// ParseMD5AnimFile parses an .md5anim file from disk.
func ParseMD5AnimFile(path string) (*MD5Anim, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading MD5 anim file: %w", err)
	}
	return ParseMD5Anim(data)
}

// ReadMD5Anim consumes exactly one .md5anim definition from tok.
func ReadMD5Anim(tok *parser.DefTokenizer) (*MD5Anim, error) {
	commandLine, err := readHeader(tok)
	if err != nil {
		return nil, err
	}

	numFrames, err := readCount(tok, "numFrames", frameTokens)
	if err != nil {
		return nil, err
	}
	numJoints, err := readCount(tok, "numJoints", animJointTokens)
	if err != nil {
		return nil, err
	}
	frameRate, err := readCount(tok, "frameRate", unboundedTokens)
	if err != nil {
		return nil, err
	}
	numComponents, err := readCount(tok, "numAnimatedComponents", componentTokens)
	if err != nil {
		return nil, err
	}

	anim := &MD5Anim{
		CommandLine:           commandLine,
		FrameRate:             frameRate,
		NumAnimatedComponents: numComponents,
	}

	joints, err := readHierarchy(tok, numJoints, numComponents)
	if err != nil {
		return nil, fmt.Errorf("parsing hierarchy: %w", err)
	}
	anim.Joints = BuildHierarchy(joints)

	if anim.Bounds, err = readBounds(tok, numFrames); err != nil {
		return nil, fmt.Errorf("parsing bounds: %w", err)
	}

	// Base frame
	if err := openBlock(tok, "baseframe"); err != nil {
		return nil, err
	}
	anim.BaseFrame = make([]MD5Key, numJoints)
	for i := range anim.BaseFrame {
		if anim.BaseFrame[i], err = readKey(tok); err != nil {
			return nil, fmt.Errorf("parsing baseframe: %w", err)
		}
	}
	if err := tok.AssertNextToken("}"); err != nil {
		return nil, err
	}

	// Frames
	anim.Frames = make([][]float32, numFrames)
	for i := range anim.Frames {
		if anim.Frames[i], err = readFrame(tok, i, numComponents); err != nil {
			return nil, fmt.Errorf("parsing frame %d: %w", i, err)
		}
	}

	return anim, nil
}

func openBlock(tok *parser.DefTokenizer, name string) error {
	if err := tok.AssertNextToken(name); err != nil {
		return err
	}
	return tok.AssertNextToken("{")
}

// readHierarchy parses "hierarchy { name parent mask firstKey ... }".
func readHierarchy(tok *parser.DefTokenizer, numJoints, numComponents int) ([]MD5Joint, error) {
	if err := openBlock(tok, "hierarchy"); err != nil {
		return nil, err
	}

	joints := make([]MD5Joint, numJoints)
	for i := range joints {
		j := &joints[i]
		var err error
		if j.Name, err = tok.NextToken(); err != nil {
			return nil, err
		}
		if j.Parent, err = tok.NextInt(); err != nil {
			return nil, err
		}
		if err := checkParent(tok, i, j.Parent); err != nil {
			return nil, err
		}
		if j.Components, err = tok.NextUint(); err != nil {
			return nil, err
		}
		if j.Components >= ComponentInvalid {
			return nil, tok.Errorf(ErrInvalidComponents, fmt.Sprint(j.Components),
				"joint %d has component mask %#x", i, j.Components)
		}
		if j.FirstKey, err = tok.NextSize(); err != nil {
			return nil, err
		}
		if j.FirstKey+bits.OnesCount32(j.Components) > numComponents {
			return nil, tok.Errorf(ErrInvalidComponents, fmt.Sprint(j.FirstKey),
				"joint %d animates past numAnimatedComponents %d", i, numComponents)
		}
	}

	if err := tok.AssertNextToken("}"); err != nil {
		return nil, err
	}
	return joints, nil
}

// readBounds parses "bounds { ( min ) ( max ) ... }".
func readBounds(tok *parser.DefTokenizer, numFrames int) ([]MD5Bounds, error) {
	if err := openBlock(tok, "bounds"); err != nil {
		return nil, err
	}

	bounds := make([]MD5Bounds, numFrames)
	for i := range bounds {
		var err error
		if bounds[i].Min, err = readVector3(tok); err != nil {
			return nil, err
		}
		if bounds[i].Max, err = readVector3(tok); err != nil {
			return nil, err
		}
	}

	if err := tok.AssertNextToken("}"); err != nil {
		return nil, err
	}
	return bounds, nil
}

// readFrame parses "frame <index> { values }". The declared index must equal
// the frame's position in the file.
func readFrame(tok *parser.DefTokenizer, index, numComponents int) ([]float32, error) {
	if err := tok.AssertNextToken("frame"); err != nil {
		return nil, err
	}
	declared, err := tok.NextSize()
	if err != nil {
		return nil, err
	}
	if declared != index {
		return nil, tok.Errorf(ErrFrameIndexMismatch, fmt.Sprint(declared), "expected frame %d", index)
	}
	if err := tok.AssertNextToken("{"); err != nil {
		return nil, err
	}

	values := make([]float32, numComponents)
	for i := range values {
		if values[i], err = tok.NextFloat(); err != nil {
			return nil, err
		}
	}

	if err := tok.AssertNextToken("}"); err != nil {
		return nil, err
	}
	return values, nil
}
