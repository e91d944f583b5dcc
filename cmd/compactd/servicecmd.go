package main

import (
	"context"
	"fmt"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
)

// program adapts runServe to the service manager's start/stop lifecycle.
type program struct {
	cfgPath string
	cancel  context.CancelFunc
	done    chan error
}

// Start implements service.Interface. It must not block.
func (p *program) Start(service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan error, 1)
	go func() { p.done <- runServe(ctx, p.cfgPath) }()
	return nil
}

// Stop implements service.Interface.
func (p *program) Stop(service.Service) error {
	if p.cancel != nil {
		p.cancel()
	}
	if p.done != nil {
		return <-p.done
	}
	return nil
}

func newService(cfgPath string) (service.Service, error) {
	svcConfig := &service.Config{
		Name:        "compactd",
		DisplayName: "compactd",
		Description: "Token budget management daemon for conversational agents",
		Arguments:   []string{"service", "run", "--config", cfgPath},
	}
	return service.New(&program{cfgPath: cfgPath}, svcConfig)
}

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage compactd as a system service",
	}

	var cfgPath string
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to configuration file")

	resolve := func() (string, error) {
		if cfgPath != "" {
			return cfgPath, nil
		}
		return resolveConfigPath()
	}

	for _, action := range []string{"install", "uninstall", "start", "stop"} {
		action := action
		cmd.AddCommand(&cobra.Command{
			Use:   action,
			Short: fmt.Sprintf("%s the system service", action),
			RunE: func(_ *cobra.Command, _ []string) error {
				path, err := resolve()
				if err != nil {
					return err
				}
				svc, err := newService(path)
				if err != nil {
					return err
				}
				return service.Control(svc, action)
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:    "run",
		Short:  "Run under the service manager (invoked by the manager)",
		Hidden: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := resolve()
			if err != nil {
				return err
			}
			svc, err := newService(path)
			if err != nil {
				return err
			}
			return svc.Run()
		},
	})

	return cmd
}
