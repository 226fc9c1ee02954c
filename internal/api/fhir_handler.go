// File path: internal/api/fhir_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kestrelhealth/medscribe/internal/fhir"
	"github.com/kestrelhealth/medscribe/internal/record"
)

type fhirRequest struct {
	StructuredData *record.StructuredRecord `json:"structured_data"`
}

func (s *Server) handleFHIR(w http.ResponseWriter, r *http.Request) {
	var req fhirRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.StructuredData == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("structured_data required"))
		return
	}
	bundle := fhir.Convert(req.StructuredData)
	writeJSON(w, http.StatusOK, map[string]interface{}{"fhir_bundle": bundle})
}
