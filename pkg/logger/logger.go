package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

const (
	CONFIG_TAG = "CONFIG"
	TOPO_TAG   = "TOPO"
	PEER_TAG   = "PEER"
	ALLOC_TAG  = "ALLOC"
	CLI_TAG    = "CLI"

	categoryField = "category"
)

var (
	Log *logrus.Logger

	CfgLog   *logrus.Entry
	TopoLog  *logrus.Entry
	PeerLog  *logrus.Entry
	AllocLog *logrus.Entry
	CliLog   *logrus.Entry
)

func init() {
	Log = logrus.New()
	Log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	Log.SetLevel(logrus.InfoLevel)

	CfgLog = Log.WithField(categoryField, CONFIG_TAG)
	TopoLog = Log.WithField(categoryField, TOPO_TAG)
	PeerLog = Log.WithField(categoryField, PEER_TAG)
	AllocLog = Log.WithField(categoryField, ALLOC_TAG)
	CliLog = Log.WithField(categoryField, CLI_TAG)
}

// SetLevel parses a logrus level name ("trace", "debug", "info", ...).
func SetLevel(level string) error {
	lv, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Log.SetLevel(lv)
	return nil
}

func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}
