// Package core contains the transport contract for the compute BackendServices
// API: credential resolution, the operation descriptor table, the per-method
// policy wrapper and the transport base that binds them together. Concrete
// transports live in the transport package and depend on core; core must not
// depend on any concrete transport.
package core
