package xbar

import (
	"reflect"
	"testing"

	"github.com/db47h/xbar/fli"
)

func TestPortFields(t *testing.T) {
	var names []string
	outputs := 0
	for _, pf := range portFields(reflect.TypeOf(&signals{})) {
		names = append(names, pf.name)
		if pf.output {
			outputs++
		}
	}
	if !reflect.DeepEqual(names, portNames) {
		t.Fatalf("got %v, expected %v", names, portNames)
	}
	if outputs != 2 {
		t.Fatalf("got %d outputs", outputs)
	}
}

func TestPortFields_panics(t *testing.T) {
	data := []struct {
		name string
		v    interface{}
	}{
		{"not_struct", 42},
		{"bad_dir", struct {
			A fli.Signal `xbar:"inout"`
		}{}},
		{"bad_type", struct {
			A int `xbar:"in"`
		}{}},
		{"bad_tag", struct {
			A fli.Signal `xbar:"in,a,b"`
		}{}},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			portFields(reflect.TypeOf(d.v))
		})
	}
}
