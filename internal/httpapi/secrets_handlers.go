package httpapi

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"noticeboard-engine/internal/config"
	"noticeboard-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setAIKeyReq struct {
	APIKey string `json:"api_key"`
}

func (h SecretsHandler) SetAIKey(w http.ResponseWriter, r *http.Request) {
	var req setAIKeyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	account := secrets.AIKeyringAccount(cfg.AI.Endpoint, cfg.AI.Model)
	if err := secrets.SetAIKey(account, req.APIKey); err != nil {
		WriteError(w, r, http.StatusBadRequest, "keyring_error", "failed to store API key: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
