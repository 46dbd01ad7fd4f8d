package schema

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

type tagOptions struct {
	index   int
	ambient bool
	codec   string
}

// parseTag parses the content of a "pos" tag:
//
//	pos:"2"
//	pos:"3,ambient"
//	pos:"4,codec=levels"
func parseTag(tag string) (tagOptions, error) {
	var opts tagOptions

	parts := strings.Split(tag, ",")
	idx := strings.TrimSpace(parts[0])
	if idx == "" {
		return opts, errors.New("missing index")
	}

	i, err := strconv.Atoi(idx)
	if err != nil {
		return opts, errors.Newf("index %q is not an integer", idx)
	}
	if i < 0 {
		return opts, errors.Newf("index %d is negative", i)
	}
	if i > IndexLimit {
		return opts, errors.Newf("index %d exceeds %d", i, IndexLimit)
	}
	opts.index = i

	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		switch {
		case p == "":
		case p == "ambient":
			opts.ambient = true
		case strings.HasPrefix(p, "codec="):
			opts.codec = strings.TrimPrefix(p, "codec=")
			if opts.codec == "" {
				return opts, errors.New("empty codec name")
			}
		default:
			return opts, errors.Newf("unknown option %q", p)
		}
	}

	return opts, nil
}
