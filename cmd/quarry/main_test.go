package main

import (
	"flag"
	"reflect"
	"testing"

	"github.com/fieldstone/quarry/internal/models"
)

func TestBuildTerm(t *testing.T) {
	if got := buildTerm([]string{"core", "switch"}); got != "core switch" {
		t.Errorf("buildTerm = %q", got)
	}
	if got := buildTerm([]string{" core switch "}); got != "core switch" {
		t.Errorf("buildTerm = %q", got)
	}
	if got := buildTerm(nil); got != "" {
		t.Errorf("buildTerm(nil) = %q", got)
	}
}

func TestQueryFlags(t *testing.T) {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	qf := addQueryFlags(fs)
	if err := fs.Parse([]string{
		"-kind", "iface", "-fields", "name, ip_address,", "-mode", "any_keyword",
		"-from", "2", "-to", "7",
	}); err != nil {
		t.Fatal(err)
	}

	q := qf.query("core")
	want := models.Query{
		Kind:   "iface",
		Fields: []string{"name", "ip_address"},
		Term:   "core",
		Mode:   models.ModeAnyKeyword,
		From:   2,
		To:     7,
	}
	if !reflect.DeepEqual(q, want) {
		t.Errorf("query = %+v, want %+v", q, want)
	}
}
