package output

import (
	"context"

	acs "github.com/go-sif/acs"
	"github.com/go-sif/acs/assemble"
	"github.com/go-sif/acs/transform"
)

// Materialize assembles a table, transforms each row and writes it to w. The header of
// w must match the table the Transformer was built for.
func Materialize(ctx context.Context, a *assemble.Assembler, table acs.TableSpec, tr *transform.Transformer, w *Writer) (*assemble.BatchResult, error) {
	return a.Run(ctx, table, func(row acs.Row) error {
		rec, err := tr.Transform(row)
		if err != nil {
			return err
		}
		return w.WriteRecord(rec)
	})
}
