//go:build tools

package tools

// Pinned protoc plugins used to regenerate protos/gen.
import (
	_ "google.golang.org/grpc/cmd/protoc-gen-go-grpc"
	_ "google.golang.org/protobuf/cmd/protoc-gen-go"
)
