package dataset

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

// LoadOptions controls CSV ingestion.
type LoadOptions struct {
	// Delimiter for the file; 0 means comma.
	Delimiter rune
	// NaNTokens are cell values treated as missing, in addition to the
	// empty string.
	NaNTokens []string
}

// DefaultLoadOptions matches the reference dataset: comma-separated with
// NA-style missing markers.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Delimiter: ',',
		NaNTokens: []string{"", "NA", "N/A", "NaN"},
	}
}

// Load reads a delimited file into a Table. Header names are normalized
// (trimmed, internal whitespace collapsed) because the reference file ships
// with stray padding in several column names.
func Load(path string, opt LoadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	delim := opt.Delimiter
	if delim == 0 {
		delim = ','
	}
	df := dataframe.ReadCSV(bufio.NewReader(f),
		dataframe.WithDelimiter(delim),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(opt.NaNTokens),
	)
	if err := df.Error(); err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	if df.Nrow() == 0 {
		return nil, fmt.Errorf("read csv %s: no data rows", path)
	}

	names := df.Names()
	clean := make([]string, len(names))
	for i, n := range names {
		clean[i] = NormalizeName(n)
	}
	if err := df.SetNames(clean...); err != nil {
		return nil, fmt.Errorf("normalize header: %w", err)
	}
	return FromDataFrame(df)
}

// NormalizeName trims a header name and collapses internal whitespace runs
// to single spaces.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
