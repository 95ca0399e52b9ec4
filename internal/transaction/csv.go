package transaction

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/codespire/finance-backend/internal"
)

// MaxCSVSize caps uploads; the whole file is embedded into a single prompt.
const MaxCSVSize = 1 << 20

// ValidateCSV preflights an upload before it is sent to the model: the
// payload must be non-empty, within the size cap, and parse as CSV with at
// least one record. Field counts are not enforced since bank exports vary.
func ValidateCSV(data []byte) error {
	if len(data) == 0 {
		return internal.NewValidationError("csv file is empty", internal.ErrCodeCSVMalformed)
	}
	if len(data) > MaxCSVSize {
		return internal.NewValidationError(
			fmt.Sprintf("csv file exceeds the %d byte limit", MaxCSVSize),
			internal.ErrCodeCSVMalformed)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records := 0
	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return internal.NewValidationError("csv file is malformed", internal.ErrCodeCSVMalformed).WithCause(err)
		}
		records++
	}

	if records == 0 {
		return internal.NewValidationError("csv file has no rows", internal.ErrCodeCSVMalformed)
	}

	return nil
}
