package pqvtestutil

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

const PeopleSchema = `{
	"Tag": "name=parquet_go_root, repetitiontype=REQUIRED",
	"Fields": [
		{"Tag": "name=id, inname=Id, type=INT64, repetitiontype=REQUIRED"},
		{"Tag": "name=name, inname=Name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"},
		{"Tag": "name=score, inname=Score, type=DOUBLE, repetitiontype=OPTIONAL"}
	]
}`

type Person struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Score *float64 `json:"score"`
}

// NewPeople creates count people with IDs starting at 0. Every third person has no score.
func NewPeople(count int) []Person {
	var people []Person
	for i := 0; i < count; i++ {
		person := Person{
			ID:   int64(i),
			Name: fmt.Sprintf("person_%03d", i),
		}
		if i%3 != 2 {
			score := float64(i) + 0.5
			person.Score = &score
		}
		people = append(people, person)
	}

	return people
}

// WriteTestFile writes a parquet file named fileName into dirPath, with one row group per entry in rowGroupSizes.
// It returns the path of the file and the people written to it, in order.
func WriteTestFile(dirPath, fileName string, rowGroupSizes ...int) (string, []Person, errorsx.Error) {
	var err error

	totalRows := 0
	for _, size := range rowGroupSizes {
		if size <= 0 {
			return "", nil, errorsx.Errorf("row group sizes must be positive, got %d", size)
		}
		totalRows += size
	}

	people := NewPeople(totalRows)
	filePath := filepath.Join(dirPath, fileName)

	f, err := local.NewLocalFileWriter(filePath)
	if err != nil {
		return "", nil, errorsx.Wrap(err)
	}
	defer f.Close()

	w, err := writer.NewJSONWriter(PeopleSchema, f, 1)
	if err != nil {
		return "", nil, errorsx.Wrap(err)
	}

	w.CompressionType = parquet.CompressionCodec_SNAPPY

	personIndex := 0
	for groupIndex, size := range rowGroupSizes {
		for i := 0; i < size; i++ {
			personJSON, err := json.Marshal(people[personIndex])
			if err != nil {
				return "", nil, errorsx.Wrap(err)
			}

			err = w.Write(string(personJSON))
			if err != nil {
				return "", nil, errorsx.Wrap(err, "personIndex", personIndex)
			}
			personIndex++
		}

		// the last row group is written by WriteStop
		if groupIndex < len(rowGroupSizes)-1 {
			err = w.Flush(true)
			if err != nil {
				return "", nil, errorsx.Wrap(err, "rowGroupIndex", groupIndex)
			}
		}
	}

	err = w.WriteStop()
	if err != nil {
		return "", nil, errorsx.Wrap(err)
	}

	return filePath, people, nil
}
