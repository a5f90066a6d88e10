package ndl

import (
	"reflect"
	"testing"
)

func TestDecodeEntities(t *testing.T) {
	t.Parallel()

	in := "&lt;b&gt; &amp; &quot;q&quot; &#39;a&#39; &nbsp;"
	want := `<b> & "q" 'a' &nbsp;`
	if got := decodeEntities(in); got != want {
		t.Fatalf("decodeEntities(%q) = %q, want %q", in, got, want)
	}
}

func TestExtractAll(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		tag  string
		want []string
	}{
		{
			name: "namespaced tags in order",
			text: "<dc:creator>山田太郎</dc:creator><dc:creator>鈴木花子</dc:creator>",
			tag:  "dc:creator",
			want: []string{"山田太郎", "鈴木花子"},
		},
		{
			name: "attributes on opening tag",
			text: `<dcterms:title xml:lang="ja">本のタイトル</dcterms:title>`,
			tag:  "dcterms:title",
			want: []string{"本のタイトル"},
		},
		{
			name: "whitespace trimmed, empty content skipped",
			text: "<foaf:name>  岩波書店 </foaf:name><foaf:name>   </foaf:name>",
			tag:  "foaf:name",
			want: []string{"岩波書店"},
		},
		{
			name: "other tags ignored",
			text: "<dcterms:title>A</dcterms:title><dcterms:issued>2016</dcterms:issued>",
			tag:  "dcterms:issued",
			want: []string{"2016"},
		},
		{
			name: "prefix is part of the name",
			text: "<title>bare</title>",
			tag:  "dcterms:title",
			want: nil,
		},
		{
			name: "self-closing tag yields nothing",
			text: `<dcterms:title/>`,
			tag:  "dcterms:title",
			want: nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := extractAll(tt.text, tt.tag); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("extractAll(%q) = %#v, want %#v", tt.tag, got, tt.want)
			}
		})
	}
}

func TestExtractFirst(t *testing.T) {
	t.Parallel()

	text := "<dcterms:issued>2015-04</dcterms:issued><dcterms:issued>2020</dcterms:issued>"
	if got := extractFirst(text, "dcterms:issued"); got != "2015-04" {
		t.Fatalf("extractFirst = %q, want %q", got, "2015-04")
	}
	if got := extractFirst(text, "dcterms:title"); got != "" {
		t.Fatalf("extractFirst of absent tag = %q, want empty", got)
	}
}
