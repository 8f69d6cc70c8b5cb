package recal

import (
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

type RunSummaryHDF5 struct {
	Run            int32 `hdf5:"run"`
	SPERun         int32 `hdf5:"spe_run"`
	Status         int32 `hdf5:"status"`
	Batches        int32 `hdf5:"batches"`
	SkippedBatches int32 `hdf5:"skipped_batches"`
	Hits           int64 `hdf5:"hits"`
	Selected       int64 `hdf5:"selected"`
	Isolated       int64 `hdf5:"isolated"`
	Events         int64 `hdf5:"events"`
}

type ChannelGainHDF5 struct {
	Channel   int32   `hdf5:"channel"`
	Gain      float64 `hdf5:"gain"`
	GainErr   float64 `hdf5:"gain_err"`
	FitStatus int32   `hdf5:"fit_status"`
	Chi2NDF   float64 `hdf5:"chi2_ndf"`
}

func openFile(fname string) (*hdf5.File, error) {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, &ErrOpenFile{Filename: fname, Err: err}
	}
	return f, nil
}

func createGroup(file *hdf5.File, groupName string) (*hdf5.Group, error) {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		return nil, &ErrCreateGroup{GroupName: groupName, Err: err}
	}
	return g, nil
}

func createTable(group *hdf5.Group, name string, datatype interface{}, compression Compression) (*hdf5.Dataset, error) {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer fileSpace.Close()

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()

	chunks := []uint{1024}
	if err := plist.SetChunk(chunks); err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	if err := compression.configure(plist); err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}

	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}

	dset, err := group.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

// writeArrayToTable appends data to an extendable one-dimensional table
// that already holds nRows rows.
func writeArrayToTable[T any](dataset *hdf5.Dataset, data []T, nRows int) error {
	length := uint(len(data))
	if length == 0 {
		return nil
	}
	dataspace, err := hdf5.CreateSimpleDataspace([]uint{length}, nil)
	if err != nil {
		return fmt.Errorf("error creating memory dataspace: %w", err)
	}
	defer dataspace.Close()

	newsize := []uint{uint(nRows) + length}
	dataset.Resize(newsize)
	filespace := dataset.Space()
	defer filespace.Close()
	dims, _, err := filespace.SimpleExtentDims()
	if err != nil {
		return fmt.Errorf("error reading table extent: %w", err)
	}
	if len(dims) != 1 || dims[0] != newsize[0] {
		return fmt.Errorf("error extending table to %d rows: extent is %v", newsize[0], dims)
	}

	start := []uint{uint(nRows)}
	count := []uint{length}
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		return fmt.Errorf("error selecting hyperslab: %w", err)
	}

	if err := dataset.WriteSubset(&data, dataspace, filespace); err != nil {
		return fmt.Errorf("error writing table: %w", err)
	}
	return nil
}
