// Package pipeline provides a framework for executing export steps in
// sequence.
//
// An export runs through several stages: building the records from the
// collected responses, rendering each output format into memory, writing
// the rendered files, and storing the sheet in the audit history. Each
// stage is implemented as a Step that receives the current Job and can
// modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows formats to be added or removed without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. Rendering and persisting are separate steps, so a failing render
// leaves no file behind
// 4. It supports cancellation via context between steps
//
// The pipeline supports both single exports and batch re-exports of stored
// sheets with concurrency control using errgroup.
package pipeline
