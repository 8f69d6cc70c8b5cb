package recal

import (
	"fmt"
	"io"
	"reflect"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"
)

const DefaultTreePath = "simpleLightAna/ophit_ttree"

// Older productions store the PE count under this name.
const fallbackPEBranch = "pe_pmt"

// BranchNames maps the hit fields to the branches of the input tree.
type BranchNames struct {
	Run       string `json:"run"`
	Event     string `json:"event"`
	PE        string `json:"pe"`
	Channel   string `json:"channel"`
	StartTime string `json:"start_time"`
	Width     string `json:"width"`
}

func DefaultBranchNames() BranchNames {
	return BranchNames{
		Run:       "run",
		Event:     "event",
		PE:        "pe",
		Channel:   "channel_id",
		StartTime: "start_time",
		Width:     "width",
	}
}

func (b BranchNames) list() []string {
	return []string{b.Run, b.Event, b.PE, b.Channel, b.StartTime, b.Width}
}

// Order of the values in TreeReader.values.
const (
	varRun = iota
	varEvent
	varPE
	varChannel
	varStartTime
	varWidth
	nVars
)

// TreeReader reads hits from a list of ROOT files, one chunk at a time.
// A chunk holds as many entries as fit in the byte budget; chunks never
// span files.
type TreeReader struct {
	files      []CalFile
	treePath   string
	branches   BranchNames
	chunkBytes int64
	verbosity  int

	ifile           int
	file            *riofs.File
	tree            rtree.Tree
	rvars           []rtree.ReadVar
	entriesPerChunk int64
	entry           int64
	chunk           int
}

func NewTreeReader(files []CalFile, treePath string, branches BranchNames, chunkBytes int64, verbosity int) *TreeReader {
	return &TreeReader{
		files:      files,
		treePath:   treePath,
		branches:   branches,
		chunkBytes: chunkBytes,
		verbosity:  verbosity,
	}
}

func supportedKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func (r *TreeReader) open(cf CalFile) error {
	f, err := groot.Open(cf.Path)
	if err != nil {
		return &ErrOpenFile{Filename: cf.Path, Err: err}
	}
	obj, err := riofs.Dir(f).Get(r.treePath)
	if err != nil {
		f.Close()
		return fmt.Errorf("error retrieving tree %q from %q: %w", r.treePath, cf.Path, err)
	}
	tree, ok := obj.(rtree.Tree)
	if !ok {
		f.Close()
		return fmt.Errorf("object %q in %q is a %s, not a tree", r.treePath, cf.Path, obj.Class())
	}

	available := make(map[string]rtree.ReadVar)
	for _, rv := range rtree.NewReadVars(tree) {
		available[rv.Name] = rv
	}
	rvars := make([]rtree.ReadVar, 0, nVars)
	var rowSize int64
	for i, name := range r.branches.list() {
		rv, ok := available[name]
		if !ok && i == varPE {
			rv, ok = available[fallbackPEBranch]
		}
		if !ok {
			f.Close()
			return fmt.Errorf("tree %q in %q has no branch %q", r.treePath, cf.Path, name)
		}
		typ := reflect.TypeOf(rv.Value).Elem()
		if !supportedKind(typ.Kind()) {
			f.Close()
			return fmt.Errorf("branch %q in %q has unsupported type %v", name, cf.Path, typ)
		}
		rowSize += int64(typ.Size())
		rvars = append(rvars, rv)
	}

	r.file = f
	r.tree = tree
	r.rvars = rvars
	r.entry = 0
	r.chunk = 0
	r.entriesPerChunk = r.chunkBytes / rowSize
	if r.entriesPerChunk < 1 {
		r.entriesPerChunk = 1
	}
	if r.verbosity > 0 {
		logger.Info(fmt.Sprintf("Opened %s: %d entries, %d entries per chunk", cf.Path, tree.Entries(), r.entriesPerChunk), "treeReader")
	}
	return nil
}

func (r *TreeReader) closeFile() {
	if r.file != nil {
		if err := r.file.Close(); err != nil {
			logger.Error(fmt.Errorf("error closing %q: %w", r.files[r.ifile].Path, err).Error())
		}
	}
	r.file = nil
	r.tree = nil
	r.rvars = nil
	r.ifile++
}

// Next returns the next chunk of hits. A file that cannot be read is
// skipped and reported through the returned error.
func (r *TreeReader) Next() (Batch, error) {
	for {
		if r.tree == nil {
			if r.ifile >= len(r.files) {
				return Batch{}, io.EOF
			}
			if err := r.open(r.files[r.ifile]); err != nil {
				r.ifile++
				return Batch{}, err
			}
		}
		if r.entry >= r.tree.Entries() {
			r.closeFile()
			continue
		}
		return r.readChunk()
	}
}

func (r *TreeReader) readChunk() (Batch, error) {
	cf := r.files[r.ifile]
	beg := r.entry
	end := beg + r.entriesPerChunk
	if end > r.tree.Entries() {
		end = r.tree.Entries()
	}

	batch := Batch{
		Source:      cf.Path,
		ExpectedRun: cf.Run,
		Chunk:       r.chunk,
		Hits:        make([]Hit, 0, end-beg),
	}
	rd, err := rtree.NewReader(r.tree, r.rvars, rtree.WithRange(beg, end))
	if err != nil {
		r.closeFile()
		return Batch{}, fmt.Errorf("error creating tree reader for %q: %w", cf.Path, err)
	}
	defer rd.Close()

	err = rd.Read(func(ctx rtree.RCtx) error {
		batch.Hits = append(batch.Hits, Hit{
			Run:       int(asInt64(r.rvars[varRun].Value)),
			Event:     int(asInt64(r.rvars[varEvent].Value)),
			PE:        asFloat64(r.rvars[varPE].Value),
			Channel:   int(asInt64(r.rvars[varChannel].Value)),
			StartTime: asFloat64(r.rvars[varStartTime].Value),
			Width:     asFloat64(r.rvars[varWidth].Value),
		})
		return nil
	})
	if err != nil {
		r.closeFile()
		return Batch{}, fmt.Errorf("error reading entries [%d, %d) of %q: %w", beg, end, cf.Path, err)
	}

	r.entry = end
	r.chunk++
	return batch, nil
}

func asFloat64(ptr interface{}) float64 {
	switch v := ptr.(type) {
	case *float64:
		return *v
	case *float32:
		return float64(*v)
	case *int32:
		return float64(*v)
	case *int64:
		return float64(*v)
	}
	rv := reflect.ValueOf(ptr).Elem()
	switch {
	case rv.CanInt():
		return float64(rv.Int())
	case rv.CanUint():
		return float64(rv.Uint())
	default:
		return rv.Float()
	}
}

func asInt64(ptr interface{}) int64 {
	switch v := ptr.(type) {
	case *int32:
		return int64(*v)
	case *int64:
		return *v
	case *uint32:
		return int64(*v)
	case *int16:
		return int64(*v)
	}
	rv := reflect.ValueOf(ptr).Elem()
	switch {
	case rv.CanInt():
		return rv.Int()
	case rv.CanUint():
		return int64(rv.Uint())
	default:
		return int64(rv.Float())
	}
}
