package transfer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/punchlist-api/internal/application/activity"
	"github.com/jhoicas/punchlist-api/internal/application/transfer"
	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/pkg/logger"
)

func TestUploadAttachment_FirmaAvanzaATransferSigned(t *testing.T) {
	f := newFixture(t)
	resp, err := f.uc.UploadAttachment(context.Background(), manager(1), transfer.UploadInput{
		MovementID: f.pending.ID, Filename: "signed.pdf", Data: pdfBytes, Kind: entity.AttachmentSignature,
	})
	require.NoError(t, err)

	assert.True(t, resp.Signed)
	assert.Equal(t, entity.TransferSigned, resp.TransferStatus)
	assert.Equal(t, "application/pdf", resp.Attachment.Mime)

	mov, _ := f.ledger.Movement(f.pending.ID)
	assert.Equal(t, entity.TransferSigned, mov.TransferStatus)
	atts := f.ledger.AttachmentsOf(f.pending.ID)
	require.Len(t, atts, 1)
	assert.True(t, strings.HasPrefix(atts[0].FileKey, "inventory/transfers/"))
	assert.True(t, strings.HasSuffix(atts[0].FileKey, ".pdf"))
	assert.Contains(t, f.blobs.Objects, atts[0].FileKey)
	assert.Equal(t, 6, f.ledger.Quantity(f.item.ID), "firmar no cambia la cantidad")
	assert.Contains(t, f.activity.Actions(), activity.ActionInventoryTransferUpload)
}

func TestUploadAttachment_KindVacioEsFirma(t *testing.T) {
	f := newFixture(t)
	resp, err := f.uc.UploadAttachment(context.Background(), signer(1), transfer.UploadInput{
		MovementID: f.pending.ID, Filename: "photo.png", Data: pngBytes,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.AttachmentSignature, resp.Attachment.Kind)
	assert.True(t, resp.Signed)
}

func TestUploadAttachment_FotoNoFirma(t *testing.T) {
	f := newFixture(t)
	resp, err := f.uc.UploadAttachment(context.Background(), manager(1), transfer.UploadInput{
		MovementID: f.pending.ID, Filename: "shelf.png", Data: pngBytes, Kind: entity.AttachmentPhoto, Label: " shelf ",
	})
	require.NoError(t, err)
	assert.False(t, resp.Signed)
	assert.Equal(t, entity.TransferPending, resp.TransferStatus)
	assert.Equal(t, "shelf", resp.Attachment.Label)
	assert.Equal(t, "image/png", resp.Attachment.Mime)
}

func TestUploadAttachment_MovimientoSinFirmaNoCambia(t *testing.T) {
	f := newFixture(t)
	resp, err := f.uc.UploadAttachment(context.Background(), manager(1), transfer.UploadInput{
		MovementID: f.plain.ID, Filename: "x.pdf", Data: pdfBytes, Kind: entity.AttachmentSignature,
	})
	require.NoError(t, err)
	assert.False(t, resp.Signed)
	mov, _ := f.ledger.Movement(f.plain.ID)
	assert.Equal(t, entity.TransferSigned, mov.TransferStatus)
	assert.False(t, mov.RequiresSignature)
}

func TestUploadAttachment_RepetirAgrega(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := transfer.UploadInput{MovementID: f.pending.ID, Filename: "a.pdf", Data: pdfBytes}
	first, err := f.uc.UploadAttachment(ctx, manager(1), in)
	require.NoError(t, err)
	second, err := f.uc.UploadAttachment(ctx, manager(1), in)
	require.NoError(t, err)

	assert.True(t, first.Signed)
	assert.False(t, second.Signed, "ya estaba firmado")
	assert.Equal(t, entity.TransferSigned, second.TransferStatus)
	assert.Len(t, f.ledger.AttachmentsOf(f.pending.ID), 2)
}

func TestUploadAttachment_TipoNoSoportado(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.UploadAttachment(context.Background(), manager(1), transfer.UploadInput{
		MovementID: f.pending.ID, Filename: "setup.exe", Data: exeBytes,
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Empty(t, f.ledger.AttachmentsOf(f.pending.ID))
	assert.Empty(t, f.blobs.Keys())
	mov, _ := f.ledger.Movement(f.pending.ID)
	assert.Equal(t, entity.TransferPending, mov.TransferStatus)
}

func TestUploadAttachment_Tamaño(t *testing.T) {
	f := newFixture(t)
	uc := transfer.NewUseCase(f.ledger.Movements(), f.ledger.Tx(), f.blobs, f.docs, nil, logger.Nop(), 16)
	_, err := uc.UploadAttachment(context.Background(), manager(1), transfer.UploadInput{
		MovementID: f.pending.ID, Filename: "big.pdf", Data: pdfBytes,
	})
	assert.ErrorIs(t, err, domain.ErrUploadTooLarge)

	_, err = uc.UploadAttachment(context.Background(), manager(1), transfer.UploadInput{
		MovementID: f.pending.ID, Filename: "empty.pdf",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.ledger.AttachmentsOf(f.pending.ID))
}

func TestUploadAttachment_OtroSectorProhibido(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.UploadAttachment(context.Background(), manager(2), transfer.UploadInput{
		MovementID: f.pending.ID, Filename: "s.pdf", Data: pdfBytes,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, f.ledger.AttachmentsOf(f.pending.ID))
	mov, _ := f.ledger.Movement(f.pending.ID)
	assert.Equal(t, entity.TransferPending, mov.TransferStatus)
}

func TestUploadAttachment_OtroSectorProhibidoAntesDeValidarArchivo(t *testing.T) {
	f := newFixture(t)
	uc := transfer.NewUseCase(f.ledger.Movements(), f.ledger.Tx(), f.blobs, f.docs, nil, logger.Nop(), 16)
	ctx := context.Background()
	cases := []transfer.UploadInput{
		{MovementID: f.pending.ID, Filename: "big.pdf", Data: pdfBytes},
		{MovementID: f.pending.ID, Filename: "x.exe", Data: []byte("MZ")},
		{MovementID: f.pending.ID, Filename: "s.pdf", Data: []byte("%PDF"), Kind: "selfie"},
		{MovementID: f.pending.ID},
	}
	for _, in := range cases {
		_, err := uc.UploadAttachment(ctx, manager(2), in)
		assert.ErrorIs(t, err, domain.ErrForbidden, in.Filename)
	}
	assert.Empty(t, f.blobs.Keys())
}

func TestUploadAttachment_ClaveUnicaPorCarga(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := transfer.UploadInput{MovementID: f.pending.ID, Filename: "p.pdf", Data: pdfBytes, Kind: entity.AttachmentPhoto}
	_, err := f.uc.UploadAttachment(ctx, manager(1), in)
	require.NoError(t, err)
	_, err = f.uc.UploadAttachment(ctx, manager(1), in)
	require.NoError(t, err)
	keys := f.blobs.Keys()
	require.Len(t, keys, 2)
	assert.NotEqual(t, keys[0], keys[1])
	for _, k := range keys {
		assert.True(t, strings.HasPrefix(k, "inventory/transfers/"), k)
		assert.True(t, strings.HasSuffix(k, ".pdf"), k)
	}
}

func TestUploadAttachment_SinPermisoDeFirma(t *testing.T) {
	f := newFixture(t)
	viewer := signer(1)
	viewer.Permissions = map[string]bool{entity.PermInventoryView: true}
	_, err := f.uc.UploadAttachment(context.Background(), viewer, transfer.UploadInput{
		MovementID: f.pending.ID, Filename: "s.pdf", Data: pdfBytes,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUploadAttachment_EntradaInvalida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.uc.UploadAttachment(ctx, manager(1), transfer.UploadInput{MovementID: f.pending.ID, Data: pdfBytes, Kind: "selfie"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.UploadAttachment(ctx, manager(1), transfer.UploadInput{MovementID: 999, Data: pdfBytes})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUploadAttachment_FalloDeTxRevierteYBorraBlob(t *testing.T) {
	f := newFixture(t)
	f.ledger.FailMarkSigned = errors.New("deadlock detected")

	_, err := f.uc.UploadAttachment(context.Background(), manager(1), transfer.UploadInput{
		MovementID: f.pending.ID, Filename: "s.pdf", Data: pdfBytes,
	})
	require.Error(t, err)
	assert.Empty(t, f.ledger.AttachmentsOf(f.pending.ID), "el adjunto se revierte con la firma")
	assert.Empty(t, f.blobs.Keys())
	mov, _ := f.ledger.Movement(f.pending.ID)
	assert.Equal(t, entity.TransferPending, mov.TransferStatus)
}

func TestUploadAttachment_FalloDeStorage(t *testing.T) {
	f := newFixture(t)
	f.blobs.FailPut = errors.New("bucket missing")
	_, err := f.uc.UploadAttachment(context.Background(), manager(1), transfer.UploadInput{
		MovementID: f.pending.ID, Filename: "s.pdf", Data: pdfBytes,
	})
	require.Error(t, err)
	assert.Empty(t, f.ledger.AttachmentsOf(f.pending.ID))
}

func TestDetectType(t *testing.T) {
	cases := []struct {
		name     string
		data     []byte
		filename string
		mime     string
		ext      string
		err      error
	}{
		{"pdf por contenido", pdfBytes, "whatever.bin", "application/pdf", "pdf", nil},
		{"png por contenido", pngBytes, "", "image/png", "png", nil},
		{"texto con extensión jpeg", []byte("plain text body"), "Scan.JPEG", "image/jpeg", "jpg", nil},
		{"texto con extensión heif", []byte("plain text body"), "img.heif", "image/heic", "heic", nil},
		{"ejecutable", exeBytes, "setup.exe", "", "", domain.ErrUnsupportedType},
		{"texto sin extensión", []byte("plain text body"), "notes", "", "", domain.ErrUnsupportedType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mime, ext, err := transfer.DetectType(tc.data, tc.filename)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.mime, mime)
			assert.Equal(t, tc.ext, ext)
		})
	}
}
