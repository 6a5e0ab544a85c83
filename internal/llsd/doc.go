// Package llsd implements the XML serialization of LLSD, the self-describing
// structured data format spoken by the registration API.
//
// A document is a single value wrapped in an <llsd> element:
//
//	<?xml version="1.0" ?>
//	<llsd>
//	  <map>
//	    <key>username</key><string>benny4242</string>
//	    <key>last_name_id</key><string>7</string>
//	  </map>
//	</llsd>
//
// # Type mapping
//
// Unmarshal produces the following Go values:
//
//	undef    nil
//	boolean  bool
//	integer  int
//	real     float64
//	string   string
//	uuid     uuid.UUID
//	date     time.Time
//	uri      *url.URL
//	binary   []byte
//	map      map[string]any
//	array    []any
//
// Marshal accepts the same set plus the common conveniences map[string]string,
// []string and the sized integer and float kinds. Map keys are always written
// in sorted order so encoded documents are stable.
//
// # Truthiness
//
// Truthy reports whether a decoded value counts as "yes" for a caller that does
// not know the exact type the server chose: booleans as is, non-zero numbers,
// non-empty strings, maps, arrays and binaries, any non-nil UUID, URI or date.
package llsd
