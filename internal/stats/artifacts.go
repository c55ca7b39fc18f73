package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/daveselinger/covid-rapid-test-simulation2/internal/model"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/params"
)

const (
	runIndexFile      = "run_index.json"
	configFile        = "config.json"
	statisticsFile    = "statistics.csv"
	transmissionsFile = "transmissions.csv"
	summaryFile       = "summary.json"
)

// RunConfig records everything needed to reproduce a run.
type RunConfig struct {
	RunID        string                      `json:"run_id"`
	CreatedAtUTC string                      `json:"created_at_utc"`
	Ticks        int                         `json:"ticks"`
	TickDays     float64                     `json:"tick_days"`
	Workers      int                         `json:"workers"`
	ExperimentID string                      `json:"experiment_id,omitempty"`
	Parameters   params.SimulationParameters `json:"parameters"`
}

type RunArtifacts struct {
	Config        RunConfig
	Series        []model.RunStatistics
	Transmissions []model.InfectionRecord
	Summary       Summary
}

type RunIndexEntry struct {
	RunID          string  `json:"run_id"`
	Seed           int64   `json:"seed"`
	PopulationSize int     `json:"population_size"`
	Ticks          int     `json:"ticks"`
	Workers        int     `json:"workers"`
	PeakInfected   int     `json:"peak_infected"`
	PeakDay        float64 `json:"peak_day"`
	FinalDeceased  int     `json:"final_deceased"`
	CreatedAtUTC   string  `json:"created_at_utc"`
}

var statisticsHeader = []string{
	"day", "susceptible", "infected", "exposed", "infectious", "recovered", "deceased",
	"isolated", "vaccinated", "tests_conducted", "tests_conducted_pcr", "days_lost",
}

var transmissionsHeader = []string{"time", "exposer_id", "exposed_id", "variant"}

func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, configFile), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, summaryFile), artifacts.Summary); err != nil {
		return "", err
	}
	if err := writeCSVFile(filepath.Join(runDir, statisticsFile), func(w io.Writer) error {
		return WriteStatisticsCSV(w, artifacts.Series)
	}); err != nil {
		return "", err
	}
	if err := writeCSVFile(filepath.Join(runDir, transmissionsFile), func(w io.Writer) error {
		return WriteTransmissionsCSV(w, artifacts.Transmissions)
	}); err != nil {
		return "", err
	}

	return runDir, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns the index newest first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// ExportRunArtifacts copies a run directory's artifacts into outDir/runID.
func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	for _, file := range []string{configFile, summaryFile, statisticsFile, transmissionsFile} {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	return dst, nil
}

func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	var cfg RunConfig
	ok, err := readJSON(filepath.Join(baseDir, runID, configFile), &cfg)
	return cfg, ok, err
}

func ReadSummary(baseDir, runID string) (Summary, bool, error) {
	var summary Summary
	ok, err := readJSON(filepath.Join(baseDir, runID, summaryFile), &summary)
	return summary, ok, err
}

// WriteStatisticsCSV writes one row per tick.
func WriteStatisticsCSV(w io.Writer, series []model.RunStatistics) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(statisticsHeader); err != nil {
		return err
	}
	for _, s := range series {
		if err := writer.Write([]string{
			formatFloat(s.Day),
			strconv.Itoa(s.Susceptible),
			strconv.Itoa(s.Infected),
			strconv.Itoa(s.Exposed),
			strconv.Itoa(s.Infectious),
			strconv.Itoa(s.Recovered),
			strconv.Itoa(s.Deceased),
			strconv.Itoa(s.Isolated),
			strconv.Itoa(s.Vaccinated),
			strconv.Itoa(s.TestsConducted),
			strconv.Itoa(s.TestsConductedPcr),
			formatFloat(s.DaysLost),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func ReadStatistics(baseDir, runID string) ([]model.RunStatistics, bool, error) {
	rows, ok, err := readCSVFile(filepath.Join(baseDir, runID, statisticsFile), len(statisticsHeader))
	if err != nil || !ok {
		return nil, ok, err
	}

	series := make([]model.RunStatistics, 0, len(rows))
	for i, row := range rows {
		p := rowParser{row: row}
		s := model.RunStatistics{
			Day:               p.floatAt(0),
			Susceptible:       p.intAt(1),
			Infected:          p.intAt(2),
			Exposed:           p.intAt(3),
			Infectious:        p.intAt(4),
			Recovered:         p.intAt(5),
			Deceased:          p.intAt(6),
			Isolated:          p.intAt(7),
			Vaccinated:        p.intAt(8),
			TestsConducted:    p.intAt(9),
			TestsConductedPcr: p.intAt(10),
			DaysLost:          p.floatAt(11),
		}
		if p.err != nil {
			return nil, false, fmt.Errorf("statistics row %d: %w", i+1, p.err)
		}
		series = append(series, s)
	}
	return series, true, nil
}

// WriteTransmissionsCSV writes one row per infection event. External
// exposures carry exposer id -1.
func WriteTransmissionsCSV(w io.Writer, records []model.InfectionRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(transmissionsHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := writer.Write([]string{
			formatFloat(r.Time),
			strconv.Itoa(r.ExposerID),
			strconv.Itoa(r.ExposedID),
			r.Variant,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func ReadTransmissions(baseDir, runID string) ([]model.InfectionRecord, bool, error) {
	rows, ok, err := readCSVFile(filepath.Join(baseDir, runID, transmissionsFile), len(transmissionsHeader))
	if err != nil || !ok {
		return nil, ok, err
	}

	records := make([]model.InfectionRecord, 0, len(rows))
	for i, row := range rows {
		p := rowParser{row: row}
		r := model.InfectionRecord{
			Time:      p.floatAt(0),
			ExposerID: p.intAt(1),
			ExposedID: p.intAt(2),
			Variant:   row[3],
		}
		if p.err != nil {
			return nil, false, fmt.Errorf("transmissions row %d: %w", i+1, p.err)
		}
		records = append(records, r)
	}
	return records, true, nil
}

// rowParser keeps the first parse error of a CSV row.
type rowParser struct {
	row []string
	err error
}

func (p *rowParser) intAt(col int) int {
	if p.err != nil {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(p.row[col]))
	if err != nil {
		p.err = err
	}
	return v
}

func (p *rowParser) floatAt(col int) float64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(p.row[col]), 64)
	if err != nil {
		p.err = err
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func readCSVFile(path string, columns int) ([][]string, bool, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = columns
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return [][]string{}, true, nil
		}
		return nil, false, err
	}
	if len(header) != columns {
		return nil, false, fmt.Errorf("%s: header must have %d columns", filepath.Base(path), columns)
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, false, err
	}
	return rows, true, nil
}

func writeCSVFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func readJSON(path string, value any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, value); err != nil {
		return false, err
	}
	return true, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
