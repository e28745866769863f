// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package ast_test

import (
	"testing"

	"github.com/creachadair/mds/mtest"
	"github.com/creachadair/rtjson/ast"
	"github.com/google/go-cmp/cmp"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name  string
		input ast.Value
		want  string
	}{
		{"EmptyObject", ast.Object{}, `{}`},
		{"EmptyArray", ast.Array{}, `[]`},
		{"String", ast.String("a \"b\"\n"), `"a \"b\"\n"`},
		{"Number", ast.Number("-1.5e3"), `-1.5e3`},
		{"Nested", ast.Object{
			ast.Field("list", ast.Array{ast.Number("1"), ast.String("two")}),
			ast.Field("ok", ast.String("true")),
		}, `{"list":[1,"two"],"ok":"true"}`},
		{"OrderKept", ast.Object{
			ast.Field("z", ast.Number("1")),
			ast.Field("a", ast.Number("2")),
		}, `{"z":1,"a":2}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.input.JSON(); got != test.want {
				t.Errorf("JSON: got %#q, want %#q", got, test.want)
			}
		})
	}
}

func TestPlain(t *testing.T) {
	v := ast.Array{
		ast.Object{ast.Field("a", ast.Number("1"))},
		ast.Object{ast.Field("b", ast.String("False"))},
		ast.Array{},
	}
	want := []any{
		map[string]any{"a": "1"},
		map[string]any{"b": "False"},
		[]any{},
	}
	if diff := cmp.Diff(want, v.Plain()); diff != "" {
		t.Errorf("Plain (-want, +got):\n%s", diff)
	}
}

func TestObjectSet(t *testing.T) {
	var o ast.Object
	o = o.Set("x", ast.Number("1"))
	o = o.Set("y", ast.Number("2"))
	o = o.Set("x", ast.Number("3"))

	if got, want := o.JSON(), `{"x":3,"y":2}`; got != want {
		t.Errorf("Object: got %#q, want %#q", got, want)
	}
	if m := o.Find("y"); m == nil || m.Value != ast.Number("2") {
		t.Errorf(`Find("y"): got %+v, want 2`, m)
	}
	if m := o.Find("nonesuch"); m != nil {
		t.Errorf(`Find("nonesuch"): got %+v, want nil`, m)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		raw  string
		want ast.String
	}{
		{``, ""},
		{`plain`, "plain"},
		{`say \"hi\"`, `say "hi"`},
		{`a\\b`, `a\b`},
		{`tab\there`, "tab\there"},
		{`Aé`, "Aé"},
		{`cut \u00`, `cut \u00`}, // incomplete escape is kept verbatim
		{`C:\Users\x`, `C:\Users\x`},
		{`\u12zz`, `\u12zz`},
		{`\ud83d\ude00!`, "\U0001F600!"},
		{`\ud83d alone`, "\ufffd alone"},
	}
	for _, test := range tests {
		if got := ast.Decode(test.raw); got != test.want {
			t.Errorf("Decode(%#q): got %#q, want %#q", test.raw, got, test.want)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		text string
		ok   bool
	}{
		{"0", true},
		{"-15", true},
		{"3.25e-5", true},
		{"1E+9", true},
		{"+5", true},
		{".5", true},
		{"1.", true},

		{"", false},
		{"-", false},
		{"--5", false},
		{"1.2.3", false},
		{"e5", false},
		{"1e", false},
		{"true", false},
		{"NaN", false},
		{"Infinity", false},
		{"+-5", false},
		{"1e+", false},
		{"0x10", false},
	}
	for _, test := range tests {
		n, ok := ast.ParseNumber(test.text)
		if ok != test.ok {
			t.Errorf("ParseNumber(%q): got %v, want %v", test.text, ok, test.ok)
		} else if ok && n.Text() != test.text {
			t.Errorf("ParseNumber(%q): got text %q", test.text, n.Text())
		}
	}
}

func TestNumberAccessors(t *testing.T) {
	if got := ast.Number("-42").Int64(); got != -42 {
		t.Errorf("Int64: got %d, want -42", got)
	}
	if got := ast.Number("2.5e1").Float64(); got != 25 {
		t.Errorf("Float64: got %v, want 25", got)
	}
	d, err := ast.Number("10.50").Decimal()
	if err != nil {
		t.Fatalf("Decimal: unexpected error: %v", err)
	}
	if got := d.String(); got != "10.50" {
		t.Errorf("Decimal: got %q, want 10.50", got)
	}

	mtest.MustPanic(t, func() { ast.Number("1.5").Int64() })
	mtest.MustPanic(t, func() { ast.Number("1.2.3").Float64() })
}
