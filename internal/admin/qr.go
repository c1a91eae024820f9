package admin

import (
	"net/http"

	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// handleConnectQR renders the public game address as a QR code.
func (s *Server) handleConnectQR(w http.ResponseWriter, r *http.Request) {
	if s.public == "" {
		http.Error(w, "no public address configured", http.StatusNotFound)
		return
	}
	png, err := qrcode.Encode("starfight://"+s.public, qrcode.Medium, qrSize)
	if err != nil {
		s.log.Errorw("qr encode failed", "err", err)
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
