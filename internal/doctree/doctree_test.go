package doctree

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_AppendAndClear(t *testing.T) {
	root := NewRoot()
	assert.Nil(t, root.FirstChild())

	p := NewParagraph().Append(NewText("hello"), nil, NewText(" world"))
	root.Append(p)

	require.Equal(t, 1, root.Len())
	assert.Same(t, p, root.FirstChild())
	assert.Equal(t, 2, p.Len(), "nil children are skipped")
	assert.Equal(t, "hello world", root.TextContent())

	root.Clear()
	assert.Equal(t, 0, root.Len())
	assert.Nil(t, root.FirstChild())
}

func TestNode_ToggleFormat(t *testing.T) {
	txt := NewText("x").ToggleFormat(FormatBold).ToggleFormat(FormatCode)
	assert.True(t, txt.HasFormat(FormatBold))
	assert.True(t, txt.HasFormat(FormatCode))
	assert.False(t, txt.HasFormat(FormatItalic))

	txt.ToggleFormat(FormatBold)
	assert.False(t, txt.HasFormat(FormatBold))
	assert.Equal(t, FormatCode, txt.Format)
}

func TestHeadingLevel(t *testing.T) {
	tests := []struct {
		tag  string
		want HeadingLevel
	}{
		{"h1", H1},
		{"H2", H2},
		{"h3", H3},
		{"h4", 0},
		{"p", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFromTag(tt.tag), tt.tag)
	}
	assert.Equal(t, "h2", H2.Tag())
	assert.Equal(t, H3, NewHeading(H3).Level())
	assert.Equal(t, HeadingLevel(0), NewParagraph().Level())
}

func TestNode_TextContentSeparatesBlocks(t *testing.T) {
	root := NewRoot().Append(
		NewHeading(H1).Append(NewText("Title")),
		NewParagraph().Append(NewText("Body "), NewLink("https://example.com").Append(NewText("link"))),
		NewList(ListBullet).Append(
			NewListItem().Append(NewText("one")),
			NewListItem().Append(NewText("two")),
		),
	)
	assert.Equal(t, "Title\nBody link\none\ntwo", root.TextContent())
}

func TestNode_CloneIsDeep(t *testing.T) {
	orig := NewRoot().Append(NewParagraph().Append(NewText("a")))
	cp := orig.Clone()
	cp.Children[0].Children[0].Text = "changed"
	cp.Append(NewParagraph())

	assert.Equal(t, "a", orig.Children[0].Children[0].Text)
	assert.Equal(t, 1, orig.Len())
}

func TestNode_JSONFieldNames(t *testing.T) {
	root := NewRoot().Append(
		NewHeading(H2).Append(NewText("Hi").ToggleFormat(FormatItalic)),
		NewList(ListOrdered).Append(NewListItem().Append(NewLink("https://a.example").Append(NewText("a")))),
	)
	root.Children[0].SourceTag = "H2"

	data, err := json.Marshal(root)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"type":"heading","tag":"h2"`)
	assert.Contains(t, s, `"format":2`)
	assert.Contains(t, s, `"listType":"number"`)
	assert.Contains(t, s, `"url":"https://a.example"`)
	assert.NotContains(t, s, "SourceTag")

	var back Node
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, root.TextContent(), back.TextContent())
	require.NoError(t, Validate(&back))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		root    *Node
		wantErr string
	}{
		{
			name: "valid document",
			root: NewRoot().Append(
				NewHeading(H1).Append(NewText("t")),
				NewQuote().Append(NewText("q")),
				NewList(ListBullet).Append(NewListItem().Append(
					NewText("x"),
					NewList(ListOrdered).Append(NewListItem().Append(NewText("nested"))),
				)),
			),
		},
		{name: "nil root", root: nil, wantErr: "root: missing"},
		{name: "wrong root type", root: NewParagraph(), wantErr: `expected type "root"`},
		{
			name:    "text at top level",
			root:    NewRoot().Append(NewText("loose")),
			wantErr: "root.children[0]",
		},
		{
			name:    "heading level 4",
			root:    NewRoot().Append(&Node{Type: KindHeading, Tag: "h4"}),
			wantErr: `unsupported heading tag "h4"`,
		},
		{
			name:    "paragraph inside paragraph",
			root:    NewRoot().Append(NewParagraph().Append(NewParagraph())),
			wantErr: "root.children[0].children[0]",
		},
		{
			name:    "list without items",
			root:    NewRoot().Append(NewList(ListBullet).Append(NewText("x"))),
			wantErr: `"text" is not allowed inside "list"`,
		},
		{
			name:    "bad list style",
			root:    NewRoot().Append(NewList("square")),
			wantErr: `unsupported list type "square"`,
		},
		{
			name:    "link without url",
			root:    NewRoot().Append(NewParagraph().Append(NewLink(""))),
			wantErr: "link without url",
		},
		{
			name:    "text with children",
			root:    NewRoot().Append(NewParagraph().Append(NewText("a").Append(NewText("b")))),
			wantErr: "text node cannot have children",
		},
		{
			name:    "unknown type",
			root:    NewRoot().Append(NewParagraph().Append(&Node{Type: "image"})),
			wantErr: `"image" is not allowed inside "paragraph"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.root)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEditor_UpdateIsSerialized(t *testing.T) {
	ed := NewEditor()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ed.Update(func(root *Node) {
				root.Append(NewParagraph())
			})
		}()
	}
	wg.Wait()

	snap := ed.Snapshot()
	assert.Equal(t, 50, snap.Len())
}

func TestNewEditorFromRoot(t *testing.T) {
	_, err := NewEditorFromRoot(NewRoot().Append(NewText("bad")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid document")

	ed, err := NewEditorFromRoot(NewRoot().Append(NewParagraph().Append(NewText("ok"))))
	require.NoError(t, err)
	assert.Equal(t, "ok", ed.Snapshot().TextContent())
}
