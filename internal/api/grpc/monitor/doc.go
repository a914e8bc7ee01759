// Package monitor implements the gRPC transport for the greenhouse status API.
//
// The service is declared by hand over protobuf well-known types: requests are
// google.protobuf.Empty and responses are google.protobuf.Struct documents, so
// no code generation step is needed. The package provides the service
// descriptor, a server adapting a business-service interface, a thin client
// stub and the codec between domain types and Struct documents.
package monitor
