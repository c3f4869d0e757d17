package auditlog

import "context"

// Metadata describes what a command touched. Commands attach it to their
// context with WithMetadata; the root command reads it back when the
// entry is written.
type Metadata struct {
	Backend      string
	Project      string
	ResourceType string
	ResourceID   string
	ResourceName string
}

// overlay returns m with every non-empty field of next applied.
func (m Metadata) overlay(next Metadata) Metadata {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&m.Backend, next.Backend)
	set(&m.Project, next.Project)
	set(&m.ResourceType, next.ResourceType)
	set(&m.ResourceID, next.ResourceID)
	set(&m.ResourceName, next.ResourceName)
	return m
}

type metadataKey struct{}

// WithMetadata layers meta over the metadata already on ctx.
func WithMetadata(ctx context.Context, meta Metadata) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, metadataKey{}, MetadataFromContext(ctx).overlay(meta))
}

// MetadataFromContext returns the metadata stored on ctx, if any.
func MetadataFromContext(ctx context.Context) Metadata {
	if ctx == nil {
		return Metadata{}
	}
	meta, _ := ctx.Value(metadataKey{}).(Metadata)
	return meta
}
