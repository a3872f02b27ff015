// Package codec converts mind-map graphs to and from their persisted form.
//
// # Format
//
// A graph is stored as two arrays of plain values:
//
//	{
//	  "nodes": [
//	    {"id": "root", "label": "Biology", "position": {"x": 0, "y": 0}, "isRoot": true},
//	    {"id": "n1", "label": "Cells", "position": {"x": 200, "y": 0}, "isRoot": false}
//	  ],
//	  "edges": [
//	    {"id": "e1", "sourceId": "root", "targetId": "n1"}
//	  ]
//	}
//
// The same keys are used for JSON, YAML and BSON, so a [Payload] can be
// embedded directly in a stored document. [Serialize] sorts both arrays by
// id; serializing equal graphs always produces identical bytes.
//
// # Repair on load
//
// Stored data may have been written by older or buggy clients. Instead of
// refusing to open such a document, [Repair] drops or fixes whatever
// breaks a graph invariant and returns a [Report] of what it changed.
// [Deserialize] does the same and discards the report. Decoding is lenient
// as well: a node or edge with a wrongly typed field keeps its other
// fields, and one that cannot be decoded is dropped, both showing up in
// the report. Only malformed JSON or YAML syntax produces an error
// (INVALID_FORMAT).
//
// Round trips are lossless for valid graphs:
//
//	g2 := codec.Deserialize(codec.Serialize(g))
//	g2.Equal(g) // true
package codec
