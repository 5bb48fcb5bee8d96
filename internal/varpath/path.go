package varpath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Segment is one component of a path, e.g. `name` or `name[index]`.
type Segment struct {
	Name  string
	Index int // -1 indicates no index is present.
}

// NewSegment creates a segment without an index.
func NewSegment(name string) Segment {
	return Segment{Name: name, Index: -1}
}

// HasIndex returns true if the segment has an explicit index.
func (s Segment) HasIndex() bool {
	return s.Index != -1
}

func (s Segment) String() string {
	if s.HasIndex() {
		return fmt.Sprintf("%s[%d]", s.Name, s.Index)
	}
	return s.Name
}

// Path is a parsed dotted path.
type Path struct {
	Segments []Segment
}

// segmentRegex matches a single segment, e.g. `name` or `name[1]`.
var segmentRegex = regexp.MustCompile(`^([a-zA-Z0-9_-]+)(?:\[(\d+)\])?$`)

// ValidName reports whether name can be used as a single path segment.
func ValidName(name string) bool {
	if name == "-" {
		return false
	}
	m := segmentRegex.FindStringSubmatch(name)
	return m != nil && m[2] == ""
}

// Parse parses the canonical string representation of a path. Only the last
// segment may carry an index.
func Parse(raw string) (Path, error) {
	if raw == "" {
		return Path{}, fmt.Errorf("path cannot be empty")
	}

	parts := strings.Split(raw, ".")
	p := Path{Segments: make([]Segment, 0, len(parts))}
	for i, part := range parts {
		if part == "" {
			return Path{}, fmt.Errorf("path %q contains an empty segment", raw)
		}
		matches := segmentRegex.FindStringSubmatch(part)
		if matches == nil || matches[1] == "-" {
			return Path{}, fmt.Errorf("invalid path segment %q in %q", part, raw)
		}
		seg := NewSegment(matches[1])
		if matches[2] != "" {
			if i != len(parts)-1 {
				return Path{}, fmt.Errorf("only the last segment of %q may be indexed", raw)
			}
			index, err := strconv.Atoi(matches[2])
			if err != nil {
				return Path{}, fmt.Errorf("invalid index in %q: %w", raw, err)
			}
			seg.Index = index
		}
		p.Segments = append(p.Segments, seg)
	}
	return p, nil
}

// MustParse is Parse for literal paths.
func MustParse(raw string) Path {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String serializes the path into its canonical form.
func (p Path) String() string {
	var sb strings.Builder
	for i, s := range p.Segments {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(s.String())
	}
	return sb.String()
}

// Len is the number of segments.
func (p Path) Len() int { return len(p.Segments) }

// Head is the first segment's name.
func (p Path) Head() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[0].Name
}

// Tail drops the first segment.
func (p Path) Tail() Path {
	if len(p.Segments) <= 1 {
		return Path{}
	}
	return Path{Segments: p.Segments[1:]}
}

// Last returns the final segment.
func (p Path) Last() Segment {
	if len(p.Segments) == 0 {
		return NewSegment("")
	}
	return p.Segments[len(p.Segments)-1]
}

// Index is the element index of the last segment, or -1.
func (p Path) Index() int { return p.Last().Index }

// WithoutIndex returns the path with the element index removed.
func (p Path) WithoutIndex() Path {
	if p.Index() == -1 {
		return p
	}
	segs := append([]Segment(nil), p.Segments...)
	segs[len(segs)-1].Index = -1
	return Path{Segments: segs}
}

// Equal reports whether two paths are identical.
func (p Path) Equal(o Path) bool {
	if len(p.Segments) != len(o.Segments) {
		return false
	}
	for i := range p.Segments {
		if p.Segments[i] != o.Segments[i] {
			return false
		}
	}
	return true
}

// Join concatenates non-empty dotted names.
func Join(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ".")
}

// Split separates the parent scope from the final name of a dotted string.
func Split(path string) (parent, name string) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

// Common returns the longest common scope of two dotted scopes.
func Common(a, b string) string {
	if a == "" || b == "" {
		return ""
	}
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	n := 0
	for n < len(as) && n < len(bs) && as[n] == bs[n] {
		n++
	}
	return strings.Join(as[:n], ".")
}
