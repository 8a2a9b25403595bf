/*
Package ports defines the driven ports (interfaces) for the Sluice router.

These interfaces decouple the engine from external implementations, allowing
it to work with different adapter plugins, persistence backends, and lock
providers.

# Key Interfaces

  - Adapter: a pluggable unit of settlement logic dispatched by the engine.
  - RegistryStore: persists the adapter table across restarts.
  - Journal: append-only audit log of executions and sweeps.
  - DistributedLocker: serializes Execute across replicas.
  - Snapshotter: state that must roll back with a failed execution.
*/
package ports
