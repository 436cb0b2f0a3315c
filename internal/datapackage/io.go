package datapackage

type rowPtr[T any] interface {
	*T
	row
}

// readRows loads path and decodes every non-blank record.
func readRows[T any, P rowPtr[T]](path string) ([]string, []T, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, nil, err
	}
	rows := make([]T, 0, len(table.Records))
	for _, rec := range table.Records {
		if rec.Blank() {
			continue
		}
		var value T
		decodeRow(P(&value), rec)
		rows = append(rows, value)
	}
	return table.Header, rows, nil
}

// writeRows encodes rows under header extended with the record's columns.
func writeRows[T any, P rowPtr[T]](path string, header []string, rows []T) error {
	var zero T
	header = ExtendHeader(header, P(&zero).columns())
	values := make([][]string, 0, len(rows))
	for i := range rows {
		values = append(values, encodeRow(P(&rows[i]), header))
	}
	return WriteTable(path, header, values)
}

// ReadDeployments loads deployments.csv.
func ReadDeployments(path string) ([]Deployment, error) {
	_, rows, err := readRows[Deployment](path)
	return rows, err
}

// WriteDeployments writes deployments.csv with the standard 24 columns.
func WriteDeployments(path string, rows []Deployment) error {
	return writeRows(path, nil, rows)
}

// ReadMedia loads a media table and returns its header for pass-through.
func ReadMedia(path string) ([]string, []Media, error) {
	return readRows[Media](path)
}

// WriteMedia writes a media table. A nil header writes the standard columns;
// otherwise header is kept and any missing standard columns are appended.
func WriteMedia(path string, header []string, rows []Media) error {
	return writeRows(path, header, rows)
}

// ReadObservations loads an observations table and returns its header.
func ReadObservations(path string) ([]string, []Observation, error) {
	return readRows[Observation](path)
}

// WriteObservations writes an observations table; see WriteMedia for header handling.
func WriteObservations(path string, header []string, rows []Observation) error {
	return writeRows(path, header, rows)
}

// ReadLabels loads a human annotation sheet and returns its header, which
// determines which editable fields the sheet carries.
func ReadLabels(path string) ([]string, []LabelRow, error) {
	return readRows[LabelRow](path)
}

// WriteLabels writes the annotation template.
func WriteLabels(path string, rows []LabelRow) error {
	return writeRows(path, nil, rows)
}

// ReadDetections loads an AI detections table.
func ReadDetections(path string) ([]Detection, error) {
	_, rows, err := readRows[Detection](path)
	return rows, err
}

// WriteDetections writes the AI detections table.
func WriteDetections(path string, rows []Detection) error {
	return writeRows(path, nil, rows)
}
