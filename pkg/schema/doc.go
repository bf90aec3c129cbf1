// Package schema provides the field-level type system used to describe
// action inputs and outputs.
//
// A Schema maps field names to types. Built-in types are string, int,
// number, boolean, enum, data URI, slices and nested objects, each
// accepting constraint options such as MinLen, Range or Pattern:
//
//	input := schema.Schema{
//	    "location": schema.String(schema.MinLen(2)),
//	    "soilData": schema.Object(schema.Schema{
//	        "pHLevel": schema.Number(schema.Range(0, 14)),
//	    }),
//	}
//
//	if err := schema.Validate(input, record); err != nil {
//	    for _, f := range schema.FieldErrors(err) {
//	        fmt.Println(f.Key, f.Reason) // e.g. soilData.pHLevel must be <= 14
//	    }
//	}
//
// Every Schema can be exported as a JSON Schema document with JSONSchema.
// That document is what generators are asked to conform to and what the
// HTTP and MCP surfaces publish.
package schema
