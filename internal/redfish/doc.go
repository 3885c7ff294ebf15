// Package redfish implements an HTTP client for the Redfish out-of-band
// server-management protocol exposed by BMCs.
//
// The package covers session login/logout, system inventory retrieval, and
// a firmware update workflow. It is not a general Redfish implementation:
// there is no schema validation, no event subscription, and no task manager
// beyond observing one update task at a time.
//
// # Structure
//
// A Client aggregates three layers:
//   - Transport: one HTTP call per request with logging, a typed response
//     envelope, and no retry logic.
//   - Session: SessionService login/logout and the X-Auth-Token header.
//     A token is never reused after logout.
//   - Services: SystemsService for /redfish/v1/Systems and FirmwareService
//     for the update workflow.
//
// Vendor-specific service paths resolve through an injected
// config.Endpoints map and fall back to the standard Redfish paths.
//
// # Firmware Update Workflow
//
// The update workflow is a small job-tracking state machine:
//
//	client := redfish.NewClient(redfish.Options{
//	    Host:     "10.0.0.9",
//	    Username: "ADMIN",
//	    Password: "ADMIN",
//	})
//	if err := client.Login(ctx); err != nil {
//	    return err
//	}
//	defer client.Logout(ctx)
//
//	task, err := client.Firmware().UploadAndUpdate(ctx, "fw.bin", "ActiveBIOSTarget", redfish.UpdateOptions{})
//	if err != nil {
//	    return err
//	}
//	if task.State != redfish.TaskStateCompleted {
//	    return fmt.Errorf("update ended in state %s", task.State)
//	}
//
// The stages are: multipart upload of the image, polling the inventory for
// the placeholder entry the BMC creates for the accepted upload, a
// StartUpdate action trigger, then polling the resulting task until it
// reaches a terminal state. Both polling loops are wall-clock bounded,
// check their deadline before every fetch, and abort at the sleep boundary
// when the context is cancelled. Placeholder detection tolerates a bounded
// number of consecutive fetch failures; task polling fails fast on the
// first.
//
// # Error Handling
//
// Every failure is a *ClientError carrying an ErrorType, the HTTP status,
// and a body snippet. Raw I/O errors never cross a stage boundary; use the
// Is* predicates (IsTimeout, IsTransportError, ...) to branch on failure
// category.
//
// # Concurrency
//
// A Client is not safe for concurrent use. The connection registry
// serializes access per connection handle; within one workflow invocation
// polling is strictly sequential.
package redfish
