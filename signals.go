package qualify

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for qualify events.
var (
	SignalCodecResolved       = capitan.NewSignal("qualify.codec.resolved", "Codec built for a type and qualifier set")
	SignalQualifiersUnclaimed = capitan.NewSignal("qualify.qualifiers.unclaimed", "Qualifiers left unclaimed by every factory")
	SignalFactoryRegistered   = capitan.NewSignal("qualify.factory.registered", "Factory added to a registry")
	SignalDecodeComplete      = capitan.NewSignal("qualify.decode.complete", "Decode operation finished")
	SignalEncodeComplete      = capitan.NewSignal("qualify.encode.complete", "Encode operation finished")
)

// Keys for typed event data.
var (
	KeyTypeName    = capitan.NewStringKey("type_name")
	KeyQualifiers  = capitan.NewStringKey("qualifiers")
	KeyCodec       = capitan.NewStringKey("codec")
	KeyFactory     = capitan.NewStringKey("factory")
	KeyStage       = capitan.NewStringKey("stage")
	KeyPriority    = capitan.NewIntKey("priority")
	KeyContentType = capitan.NewStringKey("content_type")
	KeySize        = capitan.NewIntKey("size")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
)

// emitCodecResolved emits an event when a codec is built and cached.
func emitCodecResolved(ctx context.Context, typeName, qualifiers, codec string) {
	capitan.Emit(ctx, SignalCodecResolved,
		KeyTypeName.Field(typeName),
		KeyQualifiers.Field(qualifiers),
		KeyCodec.Field(codec),
	)
}

// emitQualifiersUnclaimed emits an event when the structural codec is used
// although qualifiers remain.
func emitQualifiersUnclaimed(ctx context.Context, typeName, qualifiers string) {
	capitan.Emit(ctx, SignalQualifiersUnclaimed,
		KeyTypeName.Field(typeName),
		KeyQualifiers.Field(qualifiers),
	)
}

// emitFactoryRegistered emits an event when a factory joins a registry.
func emitFactoryRegistered(ctx context.Context, name string, stage Stage, priority int) {
	capitan.Emit(ctx, SignalFactoryRegistered,
		KeyFactory.Field(name),
		KeyStage.Field(stage.String()),
		KeyPriority.Field(priority),
	)
}

// emitDecodeComplete emits an event when a decode finishes.
func emitDecodeComplete(ctx context.Context, contentType, typeName string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDecodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalDecodeComplete, fields...)
	}
}

// emitEncodeComplete emits an event when an encode finishes.
func emitEncodeComplete(ctx context.Context, contentType, typeName string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalEncodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalEncodeComplete, fields...)
	}
}
