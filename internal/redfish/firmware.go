package redfish

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/redfishworks/redfishmcp/internal/logging"
)

const (
	// PlaceholderPrefix marks a provisional inventory entry the BMC creates
	// right after an image upload, before the image is validated and merged
	// into a named entry.
	PlaceholderPrefix = "New"

	// DefaultPlaceholderInterval is the pause between placeholder checks
	DefaultPlaceholderInterval = 3 * time.Second
	// DefaultPlaceholderTimeout is the placeholder detection deadline
	DefaultPlaceholderTimeout = 300 * time.Second

	// DefaultTaskInterval is the pause between task status checks
	DefaultTaskInterval = 5 * time.Second
	// DefaultTaskTimeout is the task polling deadline
	DefaultTaskTimeout = 900 * time.Second

	// maxPlaceholderFetchFailures bounds how many consecutive transport
	// failures placeholder detection tolerates before failing fast
	maxPlaceholderFetchFailures = 5
)

// TaskState is the lifecycle state of a server-side update task
type TaskState string

const (
	TaskStateUnknown   TaskState = "Unknown"
	TaskStateRunning   TaskState = "Running"
	TaskStateCompleted TaskState = "Completed"
	TaskStateException TaskState = "Exception"
	TaskStateCancelled TaskState = "Cancelled"
	TaskStateFailed    TaskState = "Failed"
)

// Terminal reports whether a task in this state will never progress
// further. The polling loop stops on any terminal state; distinguishing
// success from failure is the caller's job.
func (s TaskState) Terminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateException, TaskStateCancelled, TaskStateFailed:
		return true
	default:
		return false
	}
}

// UpdateTask is the observed representation of a firmware update task.
// The workflow only reads it, never mutates it server-side.
type UpdateTask struct {
	ODataID         string    `json:"@odata.id,omitempty"`
	ID              string    `json:"Id,omitempty"`
	State           TaskState `json:"TaskState"`
	Status          string    `json:"TaskStatus,omitempty"`
	PercentComplete *int      `json:"PercentComplete,omitempty"`
}

// FirmwareEntry identifies one firmware inventory member
type FirmwareEntry struct {
	ODataID    string `json:"@odata.id"`
	ID         string `json:"Id,omitempty"`
	Name       string `json:"Name,omitempty"`
	Version    string `json:"Version,omitempty"`
	Updateable bool   `json:"Updateable,omitempty"`
}

// IsPlaceholder reports whether this entry is a provisional upload marker:
// an entry whose Id starts with the reserved prefix or whose path contains
// a "/New" segment.
func (e FirmwareEntry) IsPlaceholder() bool {
	if strings.HasPrefix(e.ID, PlaceholderPrefix) {
		return true
	}
	return strings.Contains(e.ODataID, "/"+PlaceholderPrefix)
}

// firmwareCollection is the FirmwareInventory collection body, expanded or not
type firmwareCollection struct {
	Members []FirmwareEntry `json:"Members"`
}

// FirmwareService drives the firmware update workflow against one BMC:
// upload an image, detect the placeholder entry, trigger the update, poll
// the task to a terminal state, and optionally delete the placeholder.
type FirmwareService struct {
	client *Client
	clock  clock
}

func newFirmwareService(client *Client) *FirmwareService {
	return &FirmwareService{client: client, clock: realClock{}}
}

// inventoryPath resolves the FirmwareInventory collection path
func (f *FirmwareService) inventoryPath() string {
	return f.client.ServicePath("FirmwareInventory", defaultFirmwareInventoryPath)
}

// Inventory lists the firmware inventory members
func (f *FirmwareService) Inventory(ctx context.Context) ([]FirmwareEntry, error) {
	return f.fetchInventory(ctx, f.inventoryPath())
}

// InventoryExpanded lists the firmware inventory with one level of detail
// expanded, so member Ids are available without per-member fetches. Used
// by placeholder detection.
func (f *FirmwareService) InventoryExpanded(ctx context.Context) ([]FirmwareEntry, error) {
	return f.fetchInventory(ctx, f.inventoryPath()+"?$expand=.")
}

func (f *FirmwareService) fetchInventory(ctx context.Context, path string) ([]FirmwareEntry, error) {
	env, err := f.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if env.StatusCode != http.StatusOK {
		return nil, NewStatusError("failed to fetch firmware inventory", env.StatusCode, string(env.Body))
	}

	var coll firmwareCollection
	if err := env.JSON(&coll); err != nil {
		return nil, err
	}

	logging.Info("fetched firmware inventory",
		zap.String("path", path),
		zap.Int("count", len(coll.Members)),
	)
	return coll.Members, nil
}

// Info fetches one inventory member by Id or full @odata.id path
func (f *FirmwareService) Info(ctx context.Context, idOrPath string) (map[string]any, error) {
	path := idOrPath
	if !strings.HasPrefix(idOrPath, "/redfish/") {
		path = f.inventoryPath() + "/" + idOrPath
	}

	env, err := f.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if env.StatusCode != http.StatusOK {
		return nil, NewStatusError("failed to fetch firmware entry", env.StatusCode, string(env.Body))
	}

	var details map[string]any
	if err := env.JSON(&details); err != nil {
		return nil, err
	}
	return details, nil
}

// UploadImage transfers a local firmware image to the FirmwareInventory
// collection as a multipart form upload. The file must exist and be
// non-empty; otherwise the method fails before any network call.
//
// A 200/201/202 response means the BMC accepted the bytes, nothing more:
// the image is only usable once placeholder detection sees it in the
// inventory. UploadImage performs no retries and leaves no state behind on
// failure.
func (f *FirmwareService) UploadImage(ctx context.Context, filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return NewInvalidInputError(fmt.Sprintf("firmware file not found: %s", filePath))
	}
	if info.Size() == 0 {
		return NewInvalidInputError(fmt.Sprintf("firmware file is empty: %s", filePath))
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return NewInvalidInputError(fmt.Sprintf("failed to read firmware file: %v", err))
	}

	body, contentType, err := buildMultipartUpload(filepath.Base(filePath), data)
	if err != nil {
		return &ClientError{Type: ErrTypeUpload, Message: "failed to assemble upload form", Err: err}
	}

	target := f.inventoryPath()
	logging.Info("uploading firmware image",
		zap.String("file", filePath),
		zap.Int64("size", info.Size()),
		zap.String("target", target),
	)

	env, err := f.client.PostRaw(ctx, target, body, contentType)
	if err != nil {
		return &ClientError{Type: ErrTypeUpload, Message: "upload request failed", Err: err}
	}

	switch env.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		logging.Info("firmware upload accepted", zap.Int("status", env.StatusCode))
		return nil
	default:
		return NewUploadError("BMC rejected firmware upload", env.StatusCode, string(env.Body))
	}
}

// buildMultipartUpload assembles the form body the BMC expects: a single
// "file" part with octet-stream content.
func buildMultipartUpload(filename string, data []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(map[string][]string)
	h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename)}
	h["Content-Type"] = []string{"application/octet-stream"}

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// WaitForPlaceholder polls the expanded firmware inventory until a
// placeholder entry appears, the deadline passes, or the context is
// cancelled. The deadline is checked before every fetch, including the
// first.
//
// Transient fetch failures are tolerated (the BMC may be busy merging the
// upload) but bounded: after maxPlaceholderFetchFailures consecutive
// failures the loop fails fast with the last transport error.
func (f *FirmwareService) WaitForPlaceholder(ctx context.Context, opts PollOptions) (*FirmwareEntry, error) {
	opts = opts.withDefaults(DefaultPlaceholderInterval, DefaultPlaceholderTimeout)
	deadline := f.clock.Now().Add(opts.Timeout)
	failures := 0
	attempts := 0

	for {
		if f.clock.Now().After(deadline) {
			logging.Error("placeholder detection timed out", zap.Int("attempts", attempts))
			return nil, NewTimeoutError(fmt.Sprintf("no %s* entry appeared within %s", PlaceholderPrefix, opts.Timeout))
		}

		attempts++
		members, err := f.InventoryExpanded(ctx)
		if err != nil {
			failures++
			if failures >= maxPlaceholderFetchFailures {
				logging.Error("placeholder detection giving up",
					zap.Int("consecutive_failures", failures),
					zap.Error(err),
				)
				return nil, err
			}
			logging.Warn("placeholder fetch failed, will retry",
				zap.Int("consecutive_failures", failures),
				zap.Error(err),
			)
		} else {
			failures = 0
			for i := range members {
				if members[i].IsPlaceholder() {
					logging.Info("placeholder entry detected",
						zap.String("id", members[i].ID),
						zap.String("path", members[i].ODataID),
						zap.Int("attempts", attempts),
					)
					return &members[i], nil
				}
			}
			logging.Debug("no placeholder entry yet", zap.Int("attempts", attempts))
		}

		if err := sleep(ctx, f.clock, opts.Interval); err != nil {
			return nil, err
		}
	}
}

// startUpdatePayload is the StartUpdate action request body
type startUpdatePayload struct {
	ForceUpdate bool     `json:"ForceUpdate"`
	Targets     []string `json:"Targets"`
}

// StartUpdate triggers the update action for a logical target name and
// returns the task locator. The target name resolves through the endpoint
// map; a name that is already a Redfish path is accepted literally. The
// update is forced regardless of version match.
func (f *FirmwareService) StartUpdate(ctx context.Context, targetName string) (string, error) {
	target, ok := f.client.TargetPath(targetName)
	if !ok {
		return "", NewInvalidInputError(fmt.Sprintf("unknown update target: %s", targetName))
	}

	path := f.client.ServicePath("StartUpdate", defaultStartUpdatePath)
	payload := startUpdatePayload{ForceUpdate: true, Targets: []string{target}}

	logging.Info("triggering update",
		zap.String("path", path),
		zap.String("target", target),
	)

	env, err := f.client.Post(ctx, path, payload)
	if err != nil {
		return "", &ClientError{Type: ErrTypeUpdateTrigger, Message: "start-update request failed", Err: err}
	}

	if env.StatusCode != http.StatusOK && env.StatusCode != http.StatusAccepted {
		return "", NewUpdateTriggerError("BMC rejected start-update", env.StatusCode, string(env.Body))
	}

	// Prefer the redirect-style Location header, fall back to a
	// body-embedded task identifier.
	locator := env.Header("Location")
	if locator == "" {
		var body struct {
			ODataID string `json:"@odata.id"`
		}
		if err := env.JSON(&body); err == nil {
			locator = body.ODataID
		}
	}
	if locator == "" {
		return "", NewUpdateTriggerError("start-update response carried no task locator", env.StatusCode, string(env.Body))
	}

	logging.Info("update accepted", zap.String("task", locator))
	return locator, nil
}

// TaskStatus fetches the current task representation
func (f *FirmwareService) TaskStatus(ctx context.Context, taskURI string) (*UpdateTask, error) {
	env, err := f.client.Get(ctx, taskURI)
	if err != nil {
		return nil, err
	}
	if env.StatusCode != http.StatusOK {
		return nil, NewStatusError("failed to fetch task", env.StatusCode, string(env.Body))
	}

	task := UpdateTask{State: TaskStateUnknown}
	if err := env.JSON(&task); err != nil {
		return nil, err
	}
	if task.State == "" {
		task.State = TaskStateUnknown
	}
	return &task, nil
}

// WaitForTask polls a task until it reaches a terminal state, the deadline
// passes, or the context is cancelled. The deadline is checked before
// every fetch, including the first.
//
// Unlike placeholder detection this loop does not tolerate fetch failures:
// a transport error or non-200 status ends it immediately. The final task
// is returned for any terminal state; the caller decides what Completed
// versus Failed means. No cancel is ever issued for a task that outlives
// the deadline.
func (f *FirmwareService) WaitForTask(ctx context.Context, taskURI string, opts PollOptions) (*UpdateTask, error) {
	opts = opts.withDefaults(DefaultTaskInterval, DefaultTaskTimeout)
	deadline := f.clock.Now().Add(opts.Timeout)
	attempts := 0

	logging.Info("waiting for task",
		zap.String("task", taskURI),
		zap.Duration("interval", opts.Interval),
		zap.Duration("timeout", opts.Timeout),
	)

	for {
		if f.clock.Now().After(deadline) {
			logging.Error("task polling timed out",
				zap.String("task", taskURI),
				zap.Int("attempts", attempts),
			)
			return nil, NewTimeoutError(fmt.Sprintf("task did not finish within %s", opts.Timeout))
		}

		attempts++
		task, err := f.TaskStatus(ctx, taskURI)
		if err != nil {
			return nil, err
		}

		logging.Info("task progress",
			zap.String("state", string(task.State)),
			zap.String("status", task.Status),
			zap.Intp("percent", task.PercentComplete),
			zap.Int("attempts", attempts),
		)

		if task.State.Terminal() {
			return task, nil
		}

		if err := sleep(ctx, f.clock, opts.Interval); err != nil {
			return nil, err
		}
	}
}

// redfishError is the error-shaped body some BMCs return on DELETE
type redfishError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// DeleteUploaded locates the most recent placeholder entry and deletes it.
//
// Vendors encode deletion success differently, so three signals are
// accepted: an error-shaped body whose code names Success, a bare 202/204
// response, and a success substring in a plain-text body.
func (f *FirmwareService) DeleteUploaded(ctx context.Context, opts PollOptions) error {
	marker, err := f.WaitForPlaceholder(ctx, opts)
	if err != nil {
		return err
	}

	path := marker.ODataID
	if !strings.HasPrefix(path, "/redfish/") {
		if marker.ID == "" {
			return NewDeleteError("placeholder entry has no usable identifier", 0, "")
		}
		path = f.inventoryPath() + "/" + marker.ID
	}

	logging.Info("deleting uploaded firmware",
		zap.String("id", marker.ID),
		zap.String("path", path),
	)

	env, err := f.client.Delete(ctx, path)
	if err != nil {
		return &ClientError{Type: ErrTypeDelete, Message: "delete request failed", Err: err}
	}

	if env.StatusCode == http.StatusOK || env.StatusCode == http.StatusAccepted || env.StatusCode == http.StatusNoContent {
		var rerr redfishError
		if jsonErr := env.JSON(&rerr); jsonErr == nil && strings.Contains(rerr.Error.Code, "Success") {
			logging.Info("delete confirmed by error-shaped body", zap.String("code", rerr.Error.Code))
			return nil
		}
		if env.StatusCode == http.StatusAccepted || env.StatusCode == http.StatusNoContent {
			logging.Info("delete accepted", zap.Int("status", env.StatusCode))
			return nil
		}
		text := string(env.Body)
		if strings.Contains(text, "Success") || strings.Contains(text, "completed successfully") {
			logging.Info("delete confirmed by text body")
			return nil
		}
	}

	return NewDeleteError("BMC rejected placeholder deletion", env.StatusCode, string(env.Body))
}

// PresetSaveConfig sets whether the BMC preserves its configuration across
// the update, using the vendor Oem flag on the UpdateService. The flag
// name depends on whether the target is the BMC itself or the BIOS. The
// PATCH carries the UpdateService ETag via If-Match when one is served.
func (f *FirmwareService) PresetSaveConfig(ctx context.Context, targetName string, preserve bool) error {
	path := f.client.ServicePath("UpdateService", defaultUpdateServicePath)

	flag := "PreserveBiosConfig"
	if strings.Contains(strings.ToLower(targetName), "bmc") {
		flag = "PreserveBmcConfig"
	}
	payload := map[string]any{
		"Oem": map[string]any{
			"Public": map[string]any{flag: preserve},
		},
	}

	etagEnv, err := f.client.Get(ctx, path)
	if err != nil {
		return err
	}
	extra := map[string]string{}
	if etag := etagEnv.Header("ETag"); etag != "" {
		extra["If-Match"] = etag
	}

	logging.Info("setting preserve-config flag",
		zap.String("flag", flag),
		zap.Bool("preserve", preserve),
	)

	env, err := f.client.Patch(ctx, path, payload, extra)
	if err != nil {
		return err
	}
	if !env.Success() {
		return NewStatusError("BMC rejected preserve-config update", env.StatusCode, string(env.Body))
	}
	return nil
}

// PowerCycle forces a power cycle of a system, typically to apply a
// staged firmware image.
func (f *FirmwareService) PowerCycle(ctx context.Context, systemID string) error {
	if systemID == "" {
		systemID = "1"
	}
	path := fmt.Sprintf("%s/%s/Actions/ComputerSystem.Reset",
		f.client.ServicePath("Systems", defaultSystemsPath), systemID)
	payload := map[string]string{"ResetType": "ForcePowerCycle"}

	logging.Info("power cycling system", zap.String("system", systemID))

	env, err := f.client.Post(ctx, path, payload)
	if err != nil {
		return err
	}
	if !env.Success() {
		return NewStatusError("BMC rejected power cycle", env.StatusCode, string(env.Body))
	}
	return nil
}

// UpdateOptions configures the two polling loops of UploadAndUpdate
type UpdateOptions struct {
	// Placeholder configures placeholder detection (defaults 3s/300s)
	Placeholder PollOptions
	// Task configures task polling (defaults 5s/900s)
	Task PollOptions
}

// UploadAndUpdate runs the whole workflow for one firmware image: upload,
// placeholder detection, update trigger, task polling. It returns the
// final task representation no matter which terminal state it reached;
// the caller distinguishes success from failure by inspecting the state.
//
// One invocation runs at most one placeholder/task polling cycle; nothing
// is polled concurrently.
func (f *FirmwareService) UploadAndUpdate(ctx context.Context, filePath, targetName string, opts UpdateOptions) (*UpdateTask, error) {
	if err := f.UploadImage(ctx, filePath); err != nil {
		return nil, err
	}

	if _, err := f.WaitForPlaceholder(ctx, opts.Placeholder); err != nil {
		return nil, err
	}

	taskURI, err := f.StartUpdate(ctx, targetName)
	if err != nil {
		return nil, err
	}

	return f.WaitForTask(ctx, taskURI, opts.Task)
}
