package sshmanager

import (
	"time"

	"golang.org/x/crypto/ssh"
)

// SSHDialer opens SSH connections to lab hosts.
type SSHDialer interface {
	Dial(network, addr string, config *ssh.ClientConfig, timeout time.Duration) (*ssh.Client, error)
}

// RealSSHClient dials with golang.org/x/crypto/ssh.
type RealSSHClient struct{}

func (RealSSHClient) Dial(network, addr string, config *ssh.ClientConfig, timeout time.Duration) (*ssh.Client, error) {
	cfg := *config
	cfg.Timeout = timeout
	return ssh.Dial(network, addr, &cfg)
}

// ClientConfig builds an ssh.ClientConfig. A non-empty password wins over keys.
func ClientConfig(user, password, keyPassphrase string) (*ssh.ClientConfig, error) {
	var authMethod ssh.AuthMethod

	if password != "" {
		authMethod = ssh.Password(password)
	} else {
		var keyManager KeyManager
		if keyPassphrase != "" {
			keyManager = FileKeyManager{}
		} else {
			keyManager = AgentKeyManager{}
		}

		keys, err := keyManager.ReadPrivateKeys(keyPassphrase)
		if err != nil {
			return nil, err
		}

		authMethod = ssh.PublicKeysCallback(func() ([]ssh.Signer, error) {
			return keys, nil
		})
	}

	return &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{authMethod},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}, nil
}
