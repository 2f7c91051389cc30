package formats

import (
	"bufio"
	"errors"
	"io"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxLineLength bounds a single OBJ or MTL line. Large polygons put every
// corner on one f line, well past bufio's 64 KiB default.
const MaxLineLength = 16 << 20

func newLineScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), MaxLineLength)
	return s
}

// Token errors.
var (
	ErrInvalidNumber = errors.New("invalid number")
)

// NotEnoughDataError reports a line that carries fewer values than its keyword needs.
type NotEnoughDataError struct {
	Found    int
	Expected int
}

func (e *NotEnoughDataError) Error() string {
	return fmt.Sprintf("not enough data (found %d, expected %d)", e.Found, e.Expected)
}

// SplitLine classifies one line of OBJ or MTL text.
// It returns ok=false for blank lines and comments; otherwise the first
// whitespace-separated field is the keyword and the rest are its arguments.
func SplitLine(line string) (keyword string, args []string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", nil, false
	}

	fields := strings.Fields(trimmed)
	return fields[0], fields[1:], true
}

// TakeScalar parses the first argument as a float.
func TakeScalar(args []string) (float32, error) {
	var v [1]float32
	if err := takeFloats(args, v[:]); err != nil {
		return 0, err
	}
	return v[0], nil
}

// TakeVec2 parses the first two arguments as a 2D point.
func TakeVec2(args []string) (mgl32.Vec2, error) {
	var v mgl32.Vec2
	if err := takeFloats(args, v[:]); err != nil {
		return mgl32.Vec2{}, err
	}
	return v, nil
}

// TakeVec3 parses the first three arguments as a 3D point.
func TakeVec3(args []string) (mgl32.Vec3, error) {
	var v mgl32.Vec3
	if err := takeFloats(args, v[:]); err != nil {
		return mgl32.Vec3{}, err
	}
	return v, nil
}

func takeFloats(args []string, dst []float32) error {
	if len(args) < len(dst) {
		return &NotEnoughDataError{Found: len(args), Expected: len(dst)}
	}
	for i := range dst {
		f, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return fmt.Errorf("%w %q", ErrInvalidNumber, args[i])
		}
		dst[i] = float32(f)
	}
	return nil
}

func takeInteger(args []string) (uint32, error) {
	if len(args) < 1 {
		return 0, &NotEnoughDataError{Found: 0, Expected: 1}
	}
	n, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrInvalidNumber, args[0])
	}
	return uint32(n), nil
}
