// Package formats provides parsers for the idTech4 MD5 model formats.
package formats

import (
	"errors"
	"fmt"

	"github.com/Faultbox/md5kit/pkg/math"
	"github.com/Faultbox/md5kit/pkg/parser"
)

// MD5 format errors. Parse failures are reported as *parser.ParseError values
// wrapping one of these where a more specific cause is known.
var (
	ErrUnsupportedMD5Version = errors.New("unsupported MD5 version: expected 10")
	ErrInvalidParent         = errors.New("invalid parent joint index")
	ErrInvalidComponents     = errors.New("invalid animated component mask")
	ErrFrameIndexMismatch    = errors.New("frame index out of sequence")
	ErrCorruptMesh           = errors.New("corrupt MD5 mesh")
	ErrCountTooLarge         = errors.New("declared count exceeds input size")
)

// MD5Version is the only version tag accepted by the parsers.
const MD5Version = "10"

// MD5Key is an (origin, orientation) pair for one joint.
type MD5Key struct {
	Origin      math.Vec3
	Orientation math.Quat
}

// MD5Bounds is an axis-aligned box stored per animation frame.
type MD5Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// readHeader reads "MD5Version 10 commandline <string>" and returns the command line.
func readHeader(tok *parser.DefTokenizer) (string, error) {
	if err := tok.AssertNextToken("MD5Version"); err != nil {
		return "", err
	}
	version, err := tok.NextToken()
	if err != nil {
		return "", err
	}
	if version != MD5Version {
		return "", tok.Errorf(ErrUnsupportedMD5Version, version, "unsupported version")
	}

	if err := tok.AssertNextToken("commandline"); err != nil {
		return "", err
	}
	return tok.NextToken()
}

// Minimum number of tokens taken by one entry of each counted block. A
// declared count that the rest of the input cannot hold is rejected before
// anything is allocated for it.
const (
	meshJointTokens = 12 // "name" parent ( x y z ) ( x y z )
	animJointTokens = 4  // "name" parent flags firstKey
	meshBlockTokens = 10 // mesh { shader s numverts 0 numtris 0 numweights 0 }
	vertTokens      = 8  // vert i ( u v ) first count
	triTokens       = 5  // tri i a b c
	weightTokens    = 9  // weight i joint bias ( x y z )
	frameTokens     = 14 // ( min ) ( max ) plus frame i { }
	componentTokens = 1
	unboundedTokens = 0
)

// readCount reads "<name> <n>". When minTokens is positive, n entries of
// minTokens tokens each must fit in the unread input.
func readCount(tok *parser.DefTokenizer, name string, minTokens int) (int, error) {
	if err := tok.AssertNextToken(name); err != nil {
		return 0, err
	}
	n, err := tok.NextSize()
	if err != nil {
		return 0, err
	}
	if minTokens > 0 && n > tok.Remaining()/minTokens {
		return 0, tok.Errorf(ErrCountTooLarge, fmt.Sprint(n),
			"%s %d needs at least %d tokens, %d bytes left", name, n, n*minTokens, tok.Remaining())
	}
	return n, nil
}

// readVector3 reads "( x y z )".
func readVector3(tok *parser.DefTokenizer) (math.Vec3, error) {
	var v math.Vec3
	if err := tok.AssertNextToken("("); err != nil {
		return v, err
	}
	for _, dst := range []*float32{&v.X, &v.Y, &v.Z} {
		f, err := tok.NextFloat()
		if err != nil {
			return v, err
		}
		*dst = f
	}
	if err := tok.AssertNextToken(")"); err != nil {
		return v, err
	}
	return v, nil
}

// readKey reads "( ox oy oz ) ( rx ry rz )" and rebuilds the quaternion W.
func readKey(tok *parser.DefTokenizer) (MD5Key, error) {
	origin, err := readVector3(tok)
	if err != nil {
		return MD5Key{}, err
	}
	raw, err := readVector3(tok)
	if err != nil {
		return MD5Key{}, err
	}
	return MD5Key{Origin: origin, Orientation: math.QuatFromRawRotation(raw)}, nil
}

// checkParent verifies that parent refers to an already declared joint.
func checkParent(tok *parser.DefTokenizer, id, parent int) error {
	if parent == -1 || (parent >= 0 && parent < id) {
		return nil
	}
	return tok.Errorf(ErrInvalidParent, fmt.Sprint(parent), "joint %d has parent %d", id, parent)
}
