package mpris

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/lrcshow-cli/lrcshow/player"
	"github.com/samber/lo"
)

const (
	listNamesTimeout    = 500 * time.Millisecond
	getNameOwnerTimeout = 100 * time.Millisecond
)

// Client issues MPRIS queries over a session bus connection.
type Client struct {
	conn    *dbus.Conn
	timeout time.Duration
}

// Connect opens a private session bus connection.
// timeout bounds state and position queries.
func Connect(timeout time.Duration) (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect to session bus: %w", err)
	}

	return &Client{conn: conn, timeout: timeout}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// ListPlayers returns the names of the MPRIS players present on the bus, sorted.
func (c *Client) ListPlayers(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, listNamesTimeout)
	defer cancel()

	var names []string
	if err := c.conn.BusObject().CallWithContext(ctx, dbusIface+".ListNames", 0).Store(&names); err != nil {
		return nil, fmt.Errorf("list bus names: %w", err)
	}

	players := lo.FilterMap(names, func(name string, _ int) (string, bool) {
		return PlayerName(name)
	})
	sort.Strings(players)

	return players, nil
}

// OwnerName returns the unique connection name currently owning the player's bus name.
func (c *Client) OwnerName(ctx context.Context, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, getNameOwnerTimeout)
	defer cancel()

	var owner string
	if err := c.conn.BusObject().CallWithContext(ctx, dbusIface+".GetNameOwner", 0, BusName(name)).Store(&owner); err != nil {
		return "", fmt.Errorf("get owner of %s: %w", BusName(name), err)
	}

	return owner, nil
}

// QueryState reads every player property at once.
func (c *Client) QueryState(ctx context.Context, owner string) (player.State, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var props map[string]dbus.Variant
	err := c.conn.Object(owner, ObjectPath).
		CallWithContext(ctx, propertiesIface+".GetAll", 0, PlayerIface).
		Store(&props)
	if err != nil {
		return player.State{}, fmt.Errorf("query state of %s: %w", owner, err)
	}

	return ParseState(props, time.Now())
}

// QueryPosition reads the Position property.
func (c *Client) QueryPosition(ctx context.Context, owner string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var position dbus.Variant
	err := c.conn.Object(owner, ObjectPath).
		CallWithContext(ctx, propertiesIface+".Get", 0, PlayerIface, PropPosition).
		Store(&position)
	if err != nil {
		return 0, fmt.Errorf("query position of %s: %w", owner, err)
	}

	return ParsePosition(position)
}

func ownerMatch(name string) []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchInterface(dbusIface),
		dbus.WithMatchMember("NameOwnerChanged"),
		dbus.WithMatchArg(0, BusName(name)),
	}
}

func playerMatches(owner string) [][]dbus.MatchOption {
	return [][]dbus.MatchOption{
		{
			dbus.WithMatchSender(owner),
			dbus.WithMatchObjectPath(ObjectPath),
			dbus.WithMatchInterface(propertiesIface),
			dbus.WithMatchMember("PropertiesChanged"),
		},
		{
			dbus.WithMatchSender(owner),
			dbus.WithMatchObjectPath(ObjectPath),
			dbus.WithMatchInterface(PlayerIface),
			dbus.WithMatchMember("Seeked"),
		},
	}
}

// WatchOwner subscribes to ownership changes of the player's bus name.
func (c *Client) WatchOwner(name string) error {
	if err := c.conn.AddMatchSignal(ownerMatch(name)...); err != nil {
		return fmt.Errorf("watch owner of %s: %w", BusName(name), err)
	}
	return nil
}

// Subscribe adds the match rules for the property and seek signals of owner.
func (c *Client) Subscribe(owner string) error {
	for _, match := range playerMatches(owner) {
		if err := c.conn.AddMatchSignal(match...); err != nil {
			return fmt.Errorf("subscribe to %s: %w", owner, err)
		}
	}
	return nil
}

// Unsubscribe removes the match rules added by Subscribe.
func (c *Client) Unsubscribe(owner string) error {
	for _, match := range playerMatches(owner) {
		if err := c.conn.RemoveMatchSignal(match...); err != nil {
			return fmt.Errorf("unsubscribe from %s: %w", owner, err)
		}
	}
	return nil
}

// Signals routes every signal received on the connection to ch.
func (c *Client) Signals(ch chan<- *dbus.Signal) {
	c.conn.Signal(ch)
}

// StopSignals stops routing signals to ch.
func (c *Client) StopSignals(ch chan<- *dbus.Signal) {
	c.conn.RemoveSignal(ch)
}
