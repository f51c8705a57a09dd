// Package workload reads simulation inputs from YAML, JSON or CSV files.
package workload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/me/cpusched/pkg/model"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for file extensions Load cannot decode.
var ErrUnknownFormat = errors.New("unknown workload format")

// Load reads the workload at path, choosing the decoder from the file extension.
// CSV files carry processes only; the caller supplies policy and quantum.
func Load(path string) (*model.SimulationRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workload: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", ".json":
		req, err := Decode(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return req, nil
	case ".csv":
		procs, err := ReadCSV(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &model.SimulationRequest{Processes: procs}, nil
	default:
		return nil, fmt.Errorf("%w %q (want .yaml, .yml, .json or .csv)", ErrUnknownFormat, ext)
	}
}

// Decode parses a YAML or JSON simulation request. Policy names are
// normalized so aliases such as "round-robin" are accepted.
func Decode(r io.Reader) (*model.SimulationRequest, error) {
	var req model.SimulationRequest
	if err := yaml.NewDecoder(r).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty workload")
		}
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	// Unknown names are left as written for validation to report.
	if p, err := model.ParsePolicy(string(req.Policy)); err == nil {
		req.Policy = p
	}
	for i, q := range req.Queues {
		if p, err := model.ParsePolicy(string(q.Policy)); err == nil {
			req.Queues[i].Policy = p
		}
	}
	return &req, nil
}

// ReadCSV parses rows of id,burst,arrival[,priority]. A leading header row
// is skipped when its first column is not a number. Blank priority cells
// leave the priority unset.
func ReadCSV(r io.Reader) ([]model.Process, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) > 0 {
		if _, err := strconv.Atoi(strings.TrimSpace(records[0][0])); err != nil {
			records = records[1:]
		}
	}

	procs := make([]model.Process, 0, len(records))
	for i, rec := range records {
		p, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", i+1, err)
		}
		procs = append(procs, p)
	}
	if len(procs) == 0 {
		return nil, errors.New("csv contains no processes")
	}
	return procs, nil
}

func parseRow(rec []string) (model.Process, error) {
	if len(rec) < 3 || len(rec) > 4 {
		return model.Process{}, fmt.Errorf("expected 3 or 4 columns (id,burst,arrival[,priority]), got %d", len(rec))
	}
	names := [...]string{"id", "burst", "arrival", "priority"}
	var vals [4]int
	for i, cell := range rec {
		cell = strings.TrimSpace(cell)
		if i == 3 && cell == "" {
			break
		}
		v, err := strconv.Atoi(cell)
		if err != nil {
			return model.Process{}, fmt.Errorf("%s: %q is not an integer", names[i], cell)
		}
		vals[i] = v
	}
	p := model.Process{ID: vals[0], BurstTime: vals[1], ArrivalTime: vals[2]}
	if len(rec) == 4 && strings.TrimSpace(rec[3]) != "" {
		p.Priority = model.IntPtr(vals[3])
	}
	return p, nil
}
