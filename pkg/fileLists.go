package recal

import (
	"bufio"
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// Position of the run token in underscore-separated file names.
const (
	calRunToken = 5
	speRunToken = 1
)

// CalFile is a calibration data file and the run its name refers to.
type CalFile struct {
	Run  int
	Path string
}

func runFromToken(filename string, token int) (int, error) {
	base := filepath.Base(filename)
	fields := strings.Split(base, "_")
	if len(fields) <= token {
		return 0, &ErrParseRun{Filename: filename, Err: fmt.Errorf("expected at least %d fields", token+1)}
	}
	field := strings.TrimPrefix(fields[token], "run")
	field = strings.TrimSuffix(field, filepath.Ext(field))
	run, err := strconv.Atoi(field)
	if err != nil {
		return 0, &ErrParseRun{Filename: filename, Err: err}
	}
	return run, nil
}

// CalRunFromFilename extracts the run number of a calibration data file,
// e.g. hist_data_dl1_fstrmOffBeam_x_run9400_1_... gives 9400.
func CalRunFromFilename(filename string) (int, error) {
	return runFromToken(filename, calRunToken)
}

// SPERunFromFilename extracts the run number of an SPE fit table,
// e.g. backgroundphotons_run9390_xxx.csv gives 9390.
func SPERunFromFilename(filename string) (int, error) {
	return runFromToken(filename, speRunToken)
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &ErrOpenFile{Filename: path, Err: err}
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %q: %w", path, err)
	}
	return lines, nil
}

// ReadCalFileList reads a list of calibration files and keeps those whose
// run lies in [start, stop] and is not a bad run. A non-positive bound is
// not applied. The result is sorted by run.
func ReadCalFileList(path string, start, stop int, badRuns RunSet) ([]CalFile, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	files := make([]CalFile, 0, len(lines))
	for _, line := range lines {
		run, err := CalRunFromFilename(line)
		if err != nil {
			logger.Error(err.Error())
			continue
		}
		if badRuns.Contains(run) {
			continue
		}
		if start > 0 && run < start {
			continue
		}
		if stop > 0 && run > stop {
			continue
		}
		files = append(files, CalFile{Run: run, Path: line})
	}
	slices.SortStableFunc(files, func(a, b CalFile) int {
		return cmp.Compare(a.Run, b.Run)
	})
	return files, nil
}

// UniqueRuns returns the distinct runs of the files in ascending order.
func UniqueRuns(files []CalFile) []int {
	runs := make([]int, 0, len(files))
	for _, file := range files {
		runs = append(runs, file.Run)
	}
	slices.Sort(runs)
	return slices.Compact(runs)
}

func addSPEFile(files map[int]string, path string, badRuns RunSet) {
	run, err := SPERunFromFilename(path)
	if err != nil {
		logger.Error(err.Error())
		return
	}
	if badRuns.Contains(run) {
		return
	}
	if _, ok := files[run]; ok {
		logger.Error(fmt.Sprintf("duplicate SPE run found: %d (%s)", run, path))
		return
	}
	files[run] = path
}

// ReadSPEFileList reads a list of SPE fit tables keyed by run.
// The first file seen for a run wins.
func ReadSPEFileList(path string, badRuns RunSet) (map[int]string, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	files := make(map[int]string)
	for _, line := range lines {
		addSPEFile(files, line, badRuns)
	}
	return files, nil
}

// FindSPEFiles collects the *.csv SPE fit tables of a directory keyed by run.
func FindSPEFiles(dir string, badRuns RunSet) (map[int]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &ErrOpenFile{Filename: dir, Err: err}
	}
	files := make(map[int]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		addSPEFile(files, filepath.Join(dir, entry.Name()), badRuns)
	}
	return files, nil
}
