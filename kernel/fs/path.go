package fs

import "strings"

// Path is a slash-separated filesystem path. The zero value is the root.
type Path string

// Clean collapses "", "." and ".." components and normalizes the path to a
// leading-slash form with no trailing slash (the root cleans to "/").
func (p Path) Clean() Path {
	parts := strings.Split(string(p), "/")
	stack := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, part)
		}
	}

	return Path("/" + strings.Join(stack, "/"))
}

// Components splits a cleaned path into its non-empty slash-separated
// segments.
func (p Path) Components() []string {
	clean := string(p.Clean())
	parts := strings.Split(clean, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Append joins p and child with a single separating slash, then cleans the
// result.
func (p Path) Append(child Path) Path {
	return Path(string(p) + "/" + string(child)).Clean()
}

// Parent returns the path with its final component removed. The root's
// parent is the root.
func (p Path) Parent() Path {
	segments := p.Components()
	if len(segments) == 0 {
		return ""
	}
	return Path("/" + strings.Join(segments[:len(segments)-1], "/")).Clean()
}

// FileName returns the final path component, mirroring the original's
// Path::file_name.
func (p Path) FileName() string {
	segments := p.Components()
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// FileExtension returns the substring of FileName() after its last '.', or
// "" if the file name has no extension. Grounded on the original's
// Path::file_extension, which the Forth `run` word (resolving "<path>.run")
// relies on.
func (p Path) FileExtension() string {
	name := p.FileName()
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return ""
	}
	return name[idx+1:]
}
