package query

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"timetracker/entity"
)

// ParseError reports a row of the data file that does not follow the
// "<name>,<Action>: <timestamp>,..." grammar.
type ParseError struct {
	Line  int
	Field int // 1-based, 0 when the whole row is unreadable
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == 0 {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d, field %d: %v", e.Line, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FileStore persists employees as one CSV row per employee.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load reads the whole file. A missing file is an empty store.
func (s *FileStore) Load() ([]entity.Employee, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []entity.Employee{}, nil
		}
		return nil, errors.Wrap(err, "open data file")
	}
	defer f.Close()

	employees, err := DecodeEmployees(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", s.path)
	}
	return employees, nil
}

// Save rewrites the whole file. The rows go to a temporary file first and
// are renamed over the old file.
func (s *FileStore) Save(employees []entity.Employee) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create data directory")
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := EncodeEmployees(tmp, employees); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return errors.Wrap(err, "chmod temp file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.Wrap(err, "replace data file")
	}
	return nil
}

// DecodeEmployees parses data file rows. Duplicate names are kept as they are;
// lookups use the first one.
func DecodeEmployees(r io.Reader) ([]entity.Employee, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	employees := []entity.Employee{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &ParseError{Line: pe.Line, Err: pe.Err}
			}
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if rec[0] == "" {
			return nil, &ParseError{Line: line, Field: 1, Err: fmt.Errorf("empty employee name")}
		}
		emp := entity.Employee{Name: rec[0], Events: make([]entity.Event, 0, len(rec)-1)}
		for i, field := range rec[1:] {
			ev, err := entity.ParseEvent(field)
			if err != nil {
				fieldLine, _ := cr.FieldPos(i + 1)
				return nil, &ParseError{Line: fieldLine, Field: i + 2, Err: err}
			}
			emp.Events = append(emp.Events, ev)
		}
		employees = append(employees, emp)
	}
	return employees, nil
}

// EncodeEmployees writes rows with CRLF endings, quoting only where CSV requires it.
func EncodeEmployees(w io.Writer, employees []entity.Employee) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	for _, emp := range employees {
		if err := cw.Write(emp.Record()); err != nil {
			return errors.Wrapf(err, "write row for %q", emp.Name)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush data file")
}
