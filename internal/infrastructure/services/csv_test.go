package services

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestColumnValues(t *testing.T) {
	input := "\ufeffid, city ,country\n1,Paris,FR\n\n2,,FR\n3,\"Lyon, Rhone\",FR\n4\n"

	got, err := ColumnValues(strings.NewReader(input), "city")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Paris", "Lyon, Rhone"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	got, err = ColumnValues(strings.NewReader(input), "id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("expected 4 ids, got %v", got)
	}
}

func TestColumnValues_Errors(t *testing.T) {
	if _, err := ColumnValues(strings.NewReader(""), "a"); !errors.Is(err, ErrNoHeader) {
		t.Errorf("expected ErrNoHeader, got %v", err)
	}

	_, err := ColumnValues(strings.NewReader("a,b\n1,2\n"), "c")
	if err == nil || err.Error() != `column "c" not found` {
		t.Errorf("expected column not found, got %v", err)
	}

	_, err = ColumnValues(strings.NewReader("a,b\n,2\n"), "a")
	if !errors.Is(err, ErrEmptyColumn) {
		t.Errorf("expected ErrEmptyColumn, got %v", err)
	}
	if err.Error() != "Selected column is empty." {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestCSVHeader(t *testing.T) {
	got, err := CSVHeader(strings.NewReader("name , value\nx,1\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"name", "value"}) {
		t.Errorf("unexpected header %v", got)
	}
}
