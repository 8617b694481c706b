package pqvdal

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/goutil/userextra"
	"github.com/jamesrr39/pqv-app/pqv"
	"github.com/xitongsys/parquet-go-source/local"
	parquetreader "github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"
)

var _ pqv.RowGroupSource = &ParquetFile{}

var parquetMagicBytes = []byte("PAR1")

// ParquetFile reads a parquet file one row group at a time.
//
// The underlying reader only reads forwards, so it is kept positioned at the start of the next row group.
// Paging forwards reads straight on; any other jump recreates the reader and skips to the wanted group.
type ParquetFile struct {
	logger      *logpkg.Logger
	path        string
	parallelism int64

	file   source.ParquetFile
	reader *parquetreader.ParquetReader

	rowGroupNumRows []int64
	numRows         int64
	schema          *pqv.SchemaNode

	// -1 when the reader position is unknown
	nextRowGroupIndex int
}

// OpenParquetFile opens the parquet file at filePath ("~/" is expanded to the user's home directory).
// parallelism is the amount of goroutines the reader uses to decode columns.
func OpenParquetFile(logger *logpkg.Logger, fs gofs.Fs, filePath string, parallelism int64) (*ParquetFile, errorsx.Error) {
	var err error

	expandedPath, err := userextra.ExpandUser(filePath)
	if err != nil {
		return nil, errorsx.Wrap(err, "filepath", filePath)
	}

	err = checkIsParquetFile(fs, expandedPath)
	if err != nil {
		return nil, errorsx.Wrap(err, "filepath", expandedPath)
	}

	fileReader, err := local.NewLocalFileReader(expandedPath)
	if err != nil {
		return nil, errorsx.Wrap(err, "filepath", expandedPath)
	}

	pr, err := newParquetReader(fileReader, parallelism)
	if err != nil {
		fileReader.Close()
		return nil, errorsx.Wrap(err, "filepath", expandedPath)
	}

	var rowGroupNumRows []int64
	for _, rowGroup := range pr.Footer.GetRowGroups() {
		rowGroupNumRows = append(rowGroupNumRows, rowGroup.GetNumRows())
	}

	schema, err := schemaFromHandler(pr.SchemaHandler)
	if err != nil {
		pr.ReadStop()
		fileReader.Close()
		return nil, errorsx.Wrap(err, "filepath", expandedPath)
	}

	pf := &ParquetFile{
		logger:            logger,
		path:              filePath,
		parallelism:       parallelism,
		file:              fileReader,
		reader:            pr,
		rowGroupNumRows:   rowGroupNumRows,
		numRows:           pr.GetNumRows(),
		schema:            schema,
		nextRowGroupIndex: 0,
	}

	logger.Info("opened %q: %d rows in %d row groups, %d columns", expandedPath, pf.numRows, len(rowGroupNumRows), schema.LeafCount())

	return pf, nil
}

func checkIsParquetFile(fs gofs.Fs, filePath string) errorsx.Error {
	fileInfo, err := fs.Stat(filePath)
	if err != nil {
		return errorsx.Wrap(err)
	}

	if fileInfo.IsDir() {
		return errorsx.Errorf("expected a parquet file, but got a directory")
	}

	minSize := int64(len(parquetMagicBytes) * 2)
	if fileInfo.Size() < minSize {
		return errorsx.Errorf("file is too small to be a parquet file (%d bytes)", fileInfo.Size())
	}

	file, err := fs.Open(filePath)
	if err != nil {
		return errorsx.Wrap(err)
	}
	defer file.Close()

	header := make([]byte, len(parquetMagicBytes))
	_, err = file.ReadAt(header, 0)
	if err != nil {
		return errorsx.Wrap(err)
	}

	footer := make([]byte, len(parquetMagicBytes))
	_, err = file.ReadAt(footer, fileInfo.Size()-int64(len(footer)))
	if err != nil {
		return errorsx.Wrap(err)
	}

	if !bytes.Equal(header, parquetMagicBytes) || !bytes.Equal(footer, parquetMagicBytes) {
		return errorsx.Errorf("not a parquet file (magic bytes not found)")
	}

	return nil
}

// newParquetReader creates a reader without a Go type for the rows; row types are built from the file's schema.
func newParquetReader(file source.ParquetFile, parallelism int64) (pr *parquetreader.ParquetReader, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read parquet metadata: %v", r)
		}
	}()

	return parquetreader.NewParquetReader(file, nil, parallelism)
}

func (pf *ParquetFile) Path() string {
	return pf.path
}

func (pf *ParquetFile) NumRows() int64 {
	return pf.numRows
}

func (pf *ParquetFile) NumRowGroups() int {
	return len(pf.rowGroupNumRows)
}

func (pf *ParquetFile) Schema() *pqv.SchemaNode {
	return pf.schema
}

// RowGroupNumRows returns the row count of every row group, as recorded in the file footer.
func (pf *ParquetFile) RowGroupNumRows() []int64 {
	return pf.rowGroupNumRows
}

func (pf *ParquetFile) rowsBefore(rowGroupIndex int) int64 {
	var total int64
	for _, numRows := range pf.rowGroupNumRows[:rowGroupIndex] {
		total += numRows
	}
	return total
}

// ReadRowGroup reads all rows of one row group. Rows are structs generated from the file schema,
// with JSON tags of the column names.
func (pf *ParquetFile) ReadRowGroup(index int) (pqv.RowGroup, errorsx.Error) {
	if index < 0 || index >= len(pf.rowGroupNumRows) {
		return nil, errorsx.Errorf("row group index %d out of range (file has %d row groups)", index, len(pf.rowGroupNumRows))
	}

	startTime := time.Now()

	if index != pf.nextRowGroupIndex {
		err := pf.resetReaderTo(index)
		if err != nil {
			return nil, errorsx.Wrap(err, "rowGroupIndex", index)
		}
	}

	numRows := pf.rowGroupNumRows[index]
	if numRows == 0 {
		pf.nextRowGroupIndex = index + 1
		return pqv.RowGroup{}, nil
	}

	rows, err := pf.readRows(int(numRows))
	if err != nil {
		pf.nextRowGroupIndex = -1
		return nil, errorsx.Wrap(err, "rowGroupIndex", index, "numRows", numRows)
	}

	if int64(len(rows)) != numRows {
		pf.nextRowGroupIndex = -1
		return nil, errorsx.Errorf("expected %d rows in row group %d, but read %d", numRows, index, len(rows))
	}

	pf.nextRowGroupIndex = index + 1

	pf.logger.Debug("read row group %d (%d rows) in %s", index, numRows, time.Since(startTime))

	return rows, nil
}

func (pf *ParquetFile) readRows(numRows int) (rows []interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to decode rows: %v", r)
		}
	}()

	return pf.reader.ReadByNumber(numRows)
}

func (pf *ParquetFile) resetReaderTo(rowGroupIndex int) errorsx.Error {
	pf.reader.ReadStop()

	pr, err := newParquetReader(pf.file, pf.parallelism)
	if err != nil {
		pf.nextRowGroupIndex = -1
		return errorsx.Wrap(err)
	}
	pf.reader = pr

	rowsToSkip := pf.rowsBefore(rowGroupIndex)
	pf.logger.Debug("repositioning reader at row group %d, skipping %d rows", rowGroupIndex, rowsToSkip)

	if rowsToSkip > 0 {
		err = pr.SkipRows(rowsToSkip)
		if err != nil {
			pf.nextRowGroupIndex = -1
			return errorsx.Wrap(err, "rowsToSkip", rowsToSkip)
		}
	}

	pf.nextRowGroupIndex = rowGroupIndex
	return nil
}

// Close stops the column readers and closes the file.
func (pf *ParquetFile) Close() errorsx.Error {
	pf.reader.ReadStop()

	err := pf.file.Close()
	if err != nil {
		return errorsx.Wrap(err, "filepath", pf.path)
	}

	return nil
}
