package diagnostics

import (
	"os"

	"github.com/gocarina/gocsv"
)

// DragSample is one point of the drag time series.
type DragSample struct {
	Time        float64 `csv:"time"`
	Coefficient float64 `csv:"drag_coeff"`
}

// WriteDragSeries writes the drag time series to a CSV file.
func WriteDragSeries(path string, samples []DragSample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(&samples, f)
}
