package signal

// Signal names sent by the record service.
const (
	PreSave    = "pre_save"
	PostSave   = "post_save"
	PreDelete  = "pre_delete"
	PostDelete = "post_delete"
)

// Set groups the model lifecycle signals. One Set is shared by the service
// that sends and the code that connects receivers.
type Set struct {
	PreSave    *Signal
	PostSave   *Signal
	PreDelete  *Signal
	PostDelete *Signal
}

func NewSet() *Set {
	return &Set{
		PreSave:    New(PreSave),
		PostSave:   New(PostSave),
		PreDelete:  New(PreDelete),
		PostDelete: New(PostDelete),
	}
}
