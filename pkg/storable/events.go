package storable

// Event names fired on the host.
const (
	// EventBeforeUpdateRecord fires with (host, record) before form values
	// are copied into the record.
	EventBeforeUpdateRecord = "storable-beforeupdaterecord"

	// EventInvalid fires with (host, form) when validation fails.
	EventInvalid = "storable-invalid"

	// EventBeforeSave fires with (host, collection.Action) before a save
	// write is sent. A veto suppresses the mask. Destroy batches fire it but
	// are never followed by EventSave.
	EventBeforeSave = "storable-beforesave"

	// EventSave fires with (host, collection.WriteEvent) after a successful
	// write. It bubbles.
	EventSave = "storable-save"

	// EventCancel fires with (host). It bubbles.
	EventCancel = "storable-cancel"

	// EventException fires with (host, collection.ExceptionEvent) after a
	// failed write.
	EventException = "storable-exception"
)

// Events lists every event a controller registers on its host.
var Events = []string{
	EventBeforeUpdateRecord,
	EventInvalid,
	EventBeforeSave,
	EventSave,
	EventCancel,
	EventException,
}

// BubblingEvents lists the events that propagate to ancestors.
var BubblingEvents = []string{EventSave, EventCancel}

// MessageFormInvalid is the notification shown for an invalid form.
const MessageFormInvalid = "form-invalid"
