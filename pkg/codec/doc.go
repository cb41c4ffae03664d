// Package codec implements the versioned StateCodec: it wraps a
// ReasoningState in an envelope carrying "_version"/"_serializedAt",
// and on decode walks an ordered chain of Migration values forward to
// CurrentVersion. The envelope has "_migratedAt"/"_migratedFrom"
// fields, but neither Decode nor Encode sets them: a migrated state is
// returned without its source version, and Encode always writes a fresh
// envelope at CurrentVersion with both fields omitted.
package codec
