package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/hyperjump/meishi/internal/models"
)

// WriteCSV writes a header row and one row per contact.
func WriteCSV(w io.Writer, contacts []*models.Contact, dateLayout string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csv write: %w", err)
	}
	for _, c := range contacts {
		if err := cw.Write(row(c, dateLayout)); err != nil {
			return fmt.Errorf("csv write: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv flush: %w", err)
	}
	return nil
}
