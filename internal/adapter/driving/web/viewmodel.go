package web

import (
	"net/url"

	vm "github.com/ericfisherdev/keypanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/keypanel/internal/application"
	"github.com/ericfisherdev/keypanel/internal/domain/model"
)

// keyActionPath returns the POST target for action on the key with the given id.
func keyActionPath(id, action string) string {
	return "/app/keys/" + url.PathEscape(id) + "/" + action
}

// toDashboardViewModel combines the stored keys with one session's transient
// reveal/edit state and notice.
func toDashboardViewModel(keys []model.APIKey, sess *application.Session, csrf string) vm.DashboardViewModel {
	draft, editing := sess.Editing()

	rows := make([]vm.KeyRowViewModel, 0, len(keys))
	for _, k := range keys {
		row := toKeyRowViewModel(k, sess.IsRevealed(k.ID))
		if editing && draft.ID == k.ID {
			row.Editing = true
			row.EditLabel = draft.Label
			row.EditSecret = draft.Secret
		}
		rows = append(rows, row)
	}

	notice := sess.Notice()
	return vm.DashboardViewModel{
		CSRFToken:     csrf,
		Notice:        notice.Current(),
		NoticeDelayMS: notice.Delay().Milliseconds(),
		CreateURL:     "/app/keys",
		Keys:          rows,
	}
}

// toKeyRowViewModel converts a single domain APIKey to a KeyRowViewModel.
func toKeyRowViewModel(k model.APIKey, revealed bool) vm.KeyRowViewModel {
	display := k.Masked()
	if revealed {
		display = k.Secret
	}

	createdAt := k.CreatedAt
	return vm.KeyRowViewModel{
		ID:            k.ID,
		Label:         k.Label,
		DisplaySecret: display,
		CreatedAt:     model.FormatDate(&createdAt),
		LastUsedAt:    model.FormatDate(k.LastUsedAt),
		Revealed:      revealed,
		RevealURL:     keyActionPath(k.ID, "reveal"),
		CopyURL:       keyActionPath(k.ID, "copy"),
		EditURL:       keyActionPath(k.ID, "edit"),
		SaveURL:       keyActionPath(k.ID, "save"),
		CancelURL:     keyActionPath(k.ID, "cancel"),
		RegenerateURL: keyActionPath(k.ID, "regenerate"),
		DeleteURL:     keyActionPath(k.ID, "delete"),
	}
}
