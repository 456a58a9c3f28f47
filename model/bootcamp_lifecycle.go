package model

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Md-IrfanS/DevCamper-API/model/bootcamp"
	"github.com/Md-IrfanS/DevCamper-API/model/course"
	"github.com/Md-IrfanS/DevCamper-API/model/review"
	"github.com/Md-IrfanS/DevCamper-API/model/user"
	"github.com/Md-IrfanS/DevCamper-API/thirdparty"
	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

// CheckBootcampLimit returns a conflict when a non-admin user who already
// owns a bootcamp tries to create another one.
func CheckBootcampLimit(owner *user.DBUser, owned int) error {
	if owner.IsAdmin() || owned == 0 {
		return nil
	}
	return gimlet.ErrorResponse{
		StatusCode: http.StatusConflict,
		Message:    fmt.Sprintf("user '%s' has already published a bootcamp", owner.Id.Hex()),
	}
}

// LocationFromGeoResult converts a geocoder match into a bootcamp location.
func LocationFromGeoResult(res thirdparty.GeoResult) *bootcamp.Location {
	loc := bootcamp.NewPoint(res.Longitude, res.Latitude)
	loc.FormattedAddress = res.FormattedAddress
	loc.Street = res.Street
	loc.City = res.City
	loc.State = res.State
	loc.Zipcode = res.Zipcode
	loc.Country = res.Country
	return loc
}

// GeocodeBootcamp resolves the bootcamp's address into its location. The
// address is dropped once it has been resolved. A bootcamp without an
// address keeps its current location.
func GeocodeBootcamp(ctx context.Context, g thirdparty.Geocoder, b *bootcamp.Bootcamp) error {
	if b.Address == "" {
		return nil
	}
	if g == nil {
		return errors.New("no geocoder is configured")
	}

	results, err := g.Geocode(ctx, b.Address)
	if err != nil {
		return errors.Wrapf(err, "geocoding address of bootcamp '%s'", b.Name)
	}
	if len(results) == 0 {
		return gimlet.ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    fmt.Sprintf("address '%s' could not be located", b.Address),
		}
	}

	b.Location = LocationFromGeoResult(results[0])
	b.Address = ""
	return nil
}

// CreateBootcamp stores a new bootcamp owned by the given user after
// geocoding its address.
func CreateBootcamp(ctx context.Context, g thirdparty.Geocoder, owner *user.DBUser, b *bootcamp.Bootcamp) error {
	owned, err := bootcamp.CountByOwner(ctx, owner.Id)
	if err != nil {
		return errors.Wrapf(err, "counting bootcamps of user '%s'", owner.Id.Hex())
	}
	if err = CheckBootcampLimit(owner, owned); err != nil {
		return err
	}

	b.User = owner.Id
	if b.Address == "" && b.Location == nil {
		return gimlet.ErrorResponse{StatusCode: http.StatusBadRequest, Message: "please add an address"}
	}
	if err = GeocodeBootcamp(ctx, g, b); err != nil {
		return err
	}

	return bootcamp.Insert(ctx, b)
}

// UpdateBootcamp stores changes to an existing bootcamp's editable fields.
// The slug follows the name and a new address is geocoded again. On return
// b holds the stored bootcamp, including averages written concurrently.
func UpdateBootcamp(ctx context.Context, g thirdparty.Geocoder, b *bootcamp.Bootcamp) error {
	b.SetSlug()
	if err := GeocodeBootcamp(ctx, g, b); err != nil {
		return err
	}
	return bootcamp.Update(ctx, b)
}

// DeleteBootcamp removes a bootcamp together with its courses and reviews.
// Stored files are left for the caller to clean up.
func DeleteBootcamp(ctx context.Context, b *bootcamp.Bootcamp) error {
	courses, err := course.RemoveByBootcamp(ctx, b.Id)
	if err != nil {
		return errors.Wrapf(err, "removing courses of bootcamp '%s'", b.Id.Hex())
	}
	reviews, err := review.RemoveByBootcamp(ctx, b.Id)
	if err != nil {
		return errors.Wrapf(err, "removing reviews of bootcamp '%s'", b.Id.Hex())
	}
	if err = bootcamp.Remove(ctx, b.Id); err != nil {
		return err
	}

	grip.Info(message.Fields{
		"message":         "deleted bootcamp",
		"bootcamp_id":     b.Id.Hex(),
		"courses_removed": courses,
		"reviews_removed": reviews,
	})
	return nil
}
