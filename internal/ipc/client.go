package ipc

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Send delivers one command to a running instance and returns its reply.
func Send(appName, command string) (string, error) {
	address := fmt.Sprintf("127.0.0.1:%d", portFromName(appName))
	conn, err := net.DialTimeout("tcp", address, 2*time.Second)
	if err != nil {
		return "", fmt.Errorf("no running instance: %w", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	if _, err := fmt.Fprintln(conn, command); err != nil {
		return "", fmt.Errorf("send command: %w", err)
	}
	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// Status queries the running instance's protection state and countdown
// remaining.
func Status(appName string) (string, time.Duration, error) {
	reply, err := Send(appName, "status")
	if err != nil {
		return "", 0, err
	}
	fields := strings.Fields(reply)
	if len(fields) != 2 {
		return "", 0, fmt.Errorf("malformed status reply %q", reply)
	}
	seconds, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed status reply %q", reply)
	}
	return fields[0], time.Duration(seconds) * time.Second, nil
}

// Stop asks the running instance to end its protection session.
func Stop(appName string) error {
	reply, err := Send(appName, "stop")
	if err != nil {
		return err
	}
	if reply != "ok" {
		return fmt.Errorf("unexpected reply %q", reply)
	}
	return nil
}
