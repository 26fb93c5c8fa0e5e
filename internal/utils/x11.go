package utils

import (
	"errors"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

var (
	XConn *xgb.Conn
	XRoot xproto.Window
)

func InitX11() error {
	if XConn != nil {
		return nil
	}
	var err error
	XConn, err = xgb.NewConn()
	if err != nil {
		return err
	}

	setup := xproto.Setup(XConn)
	XRoot = setup.DefaultScreen(XConn).Root
	return nil
}

// RootWindowSize returns the size of the X11 root window, which is the
// size a desktop-background surface must render at.
func RootWindowSize() (int, int, error) {
	if err := InitX11(); err != nil {
		return 0, 0, err
	}
	geom, err := xproto.GetGeometry(XConn, xproto.Drawable(XRoot)).Reply()
	if err != nil {
		return 0, 0, err
	}
	if geom.Width == 0 || geom.Height == 0 {
		return 0, 0, errors.New("x11: root window has no area")
	}
	return int(geom.Width), int(geom.Height), nil
}

func GetGlobalMousePosition() (int, int, error) {
	if err := InitX11(); err != nil {
		return 0, 0, err
	}

	reply, err := xproto.QueryPointer(XConn, XRoot).Reply()
	if err != nil {
		return 0, 0, err
	}

	return int(reply.RootX), int(reply.RootY), nil
}

func CloseX11() {
	if XConn != nil {
		XConn.Close()
		XConn = nil
	}
}
