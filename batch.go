package posarray

import (
	"context"
	"reflect"

	"github.com/chaisql/posarray/internal/wire"
	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// UnmarshalBatch decodes an array of positional records into the slice pointed to by dst,
// using DefaultConfig.
func UnmarshalBatch(ctx context.Context, data []byte, dst any) error {
	return DefaultConfig.UnmarshalBatch(ctx, data, dst)
}

// UnmarshalBatch decodes an array of positional records into the slice pointed to by dst.
// Records are decoded in parallel, at most cfg.Concurrency at a time, and stored
// in the order they appear in data. The first failing record stops the batch
// and dst is left untouched.
func (cfg *Config) UnmarshalBatch(ctx context.Context, data []byte, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Slice {
		return errors.WithStack(&InvalidUnmarshalError{Type: reflect.TypeOf(dst)})
	}
	slice := rv.Elem()

	r := wire.NewReader(data)
	if r.Peek() == wire.Null {
		if _, err := r.Value(); err == nil && r.Done() {
			slice.Set(reflect.Zero(slice.Type()))
			return nil
		}
	}

	if err := r.BeginArray(); err != nil {
		return errors.WithStack(&FormatError{Offset: r.Offset(), Found: r.Found()})
	}

	var records [][]byte
	for i := 0; ; i++ {
		more, err := r.More()
		if err != nil {
			return tokenError(err, i, r)
		}
		if !more {
			break
		}

		el, err := r.Next()
		if err != nil {
			return errors.Wrapf(tokenError(err, i, r), "record %d", i)
		}
		records = append(records, el.Raw)
	}
	if !r.Done() {
		return errors.WithStack(&FormatError{Offset: r.Offset(), Found: r.Found(), Msg: "unexpected data after array"})
	}

	out := reflect.MakeSlice(slice.Type(), len(records), len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency())
	for i, raw := range records {
		i, raw := i, raw
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			if err := cfg.Unmarshal(raw, out.Index(i).Addr().Interface()); err != nil {
				return errors.Wrapf(err, "record %d", i)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	slice.Set(out)
	return nil
}
