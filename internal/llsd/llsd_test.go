package llsd

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshal_Scalars(t *testing.T) {
	agentID := uuid.MustParse("6a2e4c8e-9f0b-4a7e-8d3c-1f2e3d4c5b6a")

	tests := []struct {
		name string
		doc  string
		want any
	}{
		{"boolean true", `<llsd><boolean>true</boolean></llsd>`, true},
		{"boolean one", `<llsd><boolean>1</boolean></llsd>`, true},
		{"boolean empty", `<llsd><boolean /></llsd>`, false},
		{"integer", `<llsd><integer> 42 </integer></llsd>`, 42},
		{"empty integer", `<llsd><integer/></llsd>`, 0},
		{"real", `<llsd><real>1.5</real></llsd>`, 1.5},
		{"string keeps spaces", `<llsd><string> Resident </string></llsd>`, " Resident "},
		{"escaped string", `<llsd><string>a &amp; b</string></llsd>`, "a & b"},
		{"uuid", `<llsd><uuid>6a2e4c8e-9f0b-4a7e-8d3c-1f2e3d4c5b6a</uuid></llsd>`, agentID},
		{"empty uuid", `<llsd><uuid /></llsd>`, uuid.Nil},
		{"date", `<llsd><date>2009-07-21T11:53:34Z</date></llsd>`, time.Date(2009, 7, 21, 11, 53, 34, 0, time.UTC)},
		{"binary", `<llsd><binary encoding="base64">aGVsbG8=</binary></llsd>`, []byte("hello")},
		{"binary base16", `<llsd><binary encoding="base16">6869</binary></llsd>`, []byte("hi")},
		{"undef", `<llsd><undef /></llsd>`, nil},
		{"empty document", `<llsd/>`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unmarshal([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshal_URI(t *testing.T) {
	got, err := Unmarshal([]byte(`<llsd><uri>http://127.0.0.1:9000/cap/regapi/1</uri></llsd>`))
	require.NoError(t, err)

	u, ok := got.(*url.URL)
	require.True(t, ok)
	assert.Equal(t, "/cap/regapi/1", u.Path)
}

func TestUnmarshal_Containers(t *testing.T) {
	doc := `<?xml version="1.0" ?>
<llsd>
  <map>
    <!-- capability urls -->
    <key>check_name</key><string>http://example.test/cap/1</string>
    <key>codes</key>
    <array>
      <array><integer>1</integer><string>Missing parameter</string></array>
      <array><integer>2</integer><string>Name taken</string></array>
    </array>
    <key>nested</key><map><key>ok</key><boolean>true</boolean></map>
  </map>
</llsd>`

	got, err := Unmarshal([]byte(doc))
	require.NoError(t, err)

	m, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "http://example.test/cap/1", m["check_name"])
	assert.Equal(t, []any{
		[]any{1, "Missing parameter"},
		[]any{2, "Name taken"},
	}, m["codes"])
	assert.Equal(t, map[string]any{"ok": true}, m["nested"])
}

func TestUnmarshal_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not xml", `this is not xml`},
		{"wrong root", `<html><body/></html>`},
		{"unterminated", `<llsd><map><key>a</key>`},
		{"mismatched tags", `<llsd><string>a</integer></llsd>`},
		{"bad integer", `<llsd><integer>seven</integer></llsd>`},
		{"bad boolean", `<llsd><boolean>maybe</boolean></llsd>`},
		{"bad uuid", `<llsd><uuid>not-a-uuid</uuid></llsd>`},
		{"map without key", `<llsd><map><string>a</string></map></llsd>`},
		{"key without value", `<llsd><map><key>a</key></map></llsd>`},
		{"unknown element", `<llsd><float>1</float></llsd>`},
		{"two top-level values", `<llsd><string>a</string><string>b</string></llsd>`},
		{"stray text", `<llsd>hello</llsd>`},
		{"child in scalar", `<llsd><string><b>x</b></string></llsd>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestUnmarshal_NoDocument(t *testing.T) {
	_, err := Unmarshal([]byte(`<?xml version="1.0" ?>`))
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestMarshal(t *testing.T) {
	doc, err := Marshal(map[string]any{
		"username":     "benny4242",
		"last_name_id": "7",
		"limited":      1,
		"x":            128.5,
		"ok":           true,
		"none":         nil,
	})
	require.NoError(t, err)

	want := `<?xml version="1.0" ?><llsd><map>` +
		`<key>last_name_id</key><string>7</string>` +
		`<key>limited</key><integer>1</integer>` +
		`<key>none</key><undef />` +
		`<key>ok</key><boolean>true</boolean>` +
		`<key>username</key><string>benny4242</string>` +
		`<key>x</key><real>128.5</real>` +
		`</map></llsd>`
	assert.Equal(t, want, string(doc))
}

func TestMarshal_EscapesText(t *testing.T) {
	doc, err := Marshal(map[string]string{"a<b": "x & y"})
	require.NoError(t, err)
	assert.Contains(t, string(doc), "<key>a&lt;b</key><string>x &amp; y</string>")
}

func TestMarshal_RoundTripsThroughUnmarshal(t *testing.T) {
	id := uuid.New()
	in := map[string]any{
		"id":    id,
		"names": []any{"Resident", "Linden"},
		"empty": "",
	}

	doc, err := Marshal(in)
	require.NoError(t, err)

	out, err := Unmarshal(doc)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestMarshal_Unsupported(t *testing.T) {
	_, err := Marshal(struct{}{})
	var unsupported *UnsupportedTypeError
	assert.ErrorAs(t, err, &unsupported)
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, false},
		{"true", true, true},
		{"false", false, false},
		{"zero", 0, false},
		{"one", 1, true},
		{"zero real", 0.0, false},
		{"empty string", "", false},
		{"string", "false", true},
		{"nil uuid", uuid.Nil, false},
		{"uuid", uuid.New(), true},
		{"empty map", map[string]any{}, false},
		{"map", map[string]any{"a": 1}, true},
		{"empty array", []any{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truthy(tt.value))
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "7", Format(7))
	assert.Equal(t, "true", Format(true))
	assert.Equal(t, "1.25", Format(1.25))
	assert.Equal(t, "", Format(nil))
	assert.Equal(t, "Resident", Format("Resident"))
}
