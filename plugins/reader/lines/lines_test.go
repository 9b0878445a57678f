package lines

import (
	"errors"
	"io"
	"strings"
	"testing"

	"localk/pkg/contract"
)

func TestReadHeaderAndRows(t *testing.T) {
	r := New(strings.NewReader("\nX2mY2, X\r\n10,1\n  \n-1.25,2"), nil)
	h, err := r.Header()
	if err != nil {
		t.Fatalf("header: %v", err)
	}
	if len(h) != 2 || h[0] != "X2mY2" || h[1] != "X" {
		t.Fatalf("header=%q", h)
	}
	want := []contract.Sample{{10, 1}, {-1.25, 2}}
	for i, w := range want {
		s, err := r.Next()
		if err != nil {
			t.Fatalf("row %d: %v", i, err)
		}
		if len(s) != 2 || s[0] != w[0] || s[1] != w[1] {
			t.Fatalf("row %d = %v, 预期 %v", i, s, w)
		}
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expect EOF, got %v", err)
	}
	// EOF 之后保持 EOF
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expect sticky EOF, got %v", err)
	}
}

func TestEmptyInput(t *testing.T) {
	for _, in := range []string{"", "\n\n", "  \r\n"} {
		r := New(strings.NewReader(in), nil)
		if _, err := r.Header(); !errors.Is(err, contract.ErrEmptyInput) {
			t.Fatalf("%q: expect ErrEmptyInput, got %v", in, err)
		}
	}
}

func TestMalformed(t *testing.T) {
	for _, in := range []string{"X,Y\n1,abc\n", "X,Y\n1,\n", "X\n\"1\"\n"} {
		r := New(strings.NewReader(in), nil)
		if _, err := r.Header(); err != nil {
			t.Fatal(err)
		}
		_, err := r.Next()
		if !errors.Is(err, contract.ErrMalformedRecord) {
			t.Fatalf("%q: expect ErrMalformedRecord, got %v", in, err)
		}
	}
}

func TestRowNumbering(t *testing.T) {
	r := New(strings.NewReader("X\n1\n\n2\nbad\n"), &Options{BufSize: 16})
	_, _ = r.Header()
	for i := 0; i < 2; i++ {
		if _, err := r.Next(); err != nil {
			t.Fatal(err)
		}
	}
	_, err := r.Next()
	if err == nil || !strings.Contains(err.Error(), "row 3 column 1") {
		t.Fatalf("错误应定位到第 3 行: %v", err)
	}
}

func TestLongLine(t *testing.T) {
	n := 5000
	names := strings.TrimSuffix(strings.Repeat("X,", n), ",")
	vals := strings.TrimSuffix(strings.Repeat("1,", n), ",")
	r := New(strings.NewReader(names+"\n"+vals+"\n"), &Options{BufSize: 16})
	h, err := r.Header()
	if err != nil || len(h) != n {
		t.Fatalf("header: %d %v", len(h), err)
	}
	s, err := r.Next()
	if err != nil || len(s) != n {
		t.Fatalf("row: %d %v", len(s), err)
	}
}
