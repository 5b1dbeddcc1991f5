package auditlog

import "context"

// Metadata identifies the entity an operation is acting on. Upper layers
// (view-models, command handlers) attach it to the context so that code
// deeper in the call chain can log audit entries without threading entity
// fields through every signature.
type Metadata struct {
	EntityType string
	EntityID   string
	EntityName string
}

type metadataKey struct{}

// WithMetadata attaches audit metadata to a context. Fields left empty keep
// any value already present on the context.
func WithMetadata(ctx context.Context, meta Metadata) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	existing, _ := ctx.Value(metadataKey{}).(Metadata)
	merged := Metadata{
		EntityType: pick(meta.EntityType, existing.EntityType),
		EntityID:   pick(meta.EntityID, existing.EntityID),
		EntityName: pick(meta.EntityName, existing.EntityName),
	}
	return context.WithValue(ctx, metadataKey{}, merged)
}

// MetadataFromContext returns audit metadata stored in the context.
func MetadataFromContext(ctx context.Context) Metadata {
	if ctx == nil {
		return Metadata{}
	}
	meta, _ := ctx.Value(metadataKey{}).(Metadata)
	return meta
}

func pick(next, fallback string) string {
	if next != "" {
		return next
	}
	return fallback
}
