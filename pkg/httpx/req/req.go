package req

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"prodi/pkg/errcodes"
)

var (
	json     = jsoniter.ConfigCompatibleWithStandardLibrary         //nolint:gochecknoglobals // skip
	validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // skip
)

const maxBodyBytes = 1 << 20

func Read(r *http.Request, dest any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	if err := json.NewDecoder(body).Decode(dest); err != nil {
		return errcodes.Wrap(
			fmt.Errorf("json.Decode: %w", err),
			errcodes.KindInvalidArgument,
			errcodes.ValidationError,
			"Invalid JSON",
		)
	}

	if err := validate.StructCtx(r.Context(), dest); err != nil {
		return errcodes.Wrap(
			err,
			errcodes.KindInvalidArgument,
			errcodes.ValidationError,
			err.Error(),
		)
	}

	return nil
}
