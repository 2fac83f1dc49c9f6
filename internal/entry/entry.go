// internal/entry/entry.go
//
// Configuration source entry model and document wire codec.
//
// Context
// -------
// Operators maintain dynamic configuration as rows/documents of the
// shape {id, key, value, description?}.  Value is always stored as
// text; type fidelity is restored only at coercion time against the
// Field descriptor the reader supplies.  Entries are created and
// updated externally and observed, never mutated, by this system.
//
// Wire shape (document store)
//
//	{ "_id": <opaque id>, "key": <string>, "value": <string>,
//	  "description": <string, optional> }
//
// Description is omitted on encode when blank, and decodes to the empty
// string when absent; absence is not an error.
//
// Notes
// -----
//   - This struct contains no behaviour beyond the codec; pure data
//     model for sqlx scans and document round-trips.
//   - Oxford commas, two spaces after periods.
package entry

import "encoding/json"

// Entry mirrors one persisted configuration record.
type Entry struct {
	ID          string `db:"id"          json:"_id"`
	Key         string `db:"key"         json:"key"`
	Value       string `db:"value"       json:"value"`
	Description string `db:"description" json:"description,omitempty"`
}

// EncodeDocument renders the document wire shape.  A blank description
// is omitted entirely, not emitted as "".
func EncodeDocument(e Entry) ([]byte, error) {
	return json.Marshal(e)
}

// DecodeDocument parses the document wire shape.  A missing description
// field yields an empty string.
func DecodeDocument(doc []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(doc, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}
