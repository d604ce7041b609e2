package agent

import (
	"flag"
	"log"
	"os"
	"strconv"
)

type AgentConfig struct {
	Address        string
	Key            string
	Project        string
	ReportInterval int
}

func NewAgentConfig() (*AgentConfig, error) {
	config := &AgentConfig{
		Address:        "localhost:8080",
		Key:            "",
		Project:        "",
		ReportInterval: 10,
	}

	address := flag.String("a", config.Address, "collector address")
	key := flag.String("k", config.Key, "agent key")
	project := flag.String("p", config.Project, "project to submit values for")
	reportInterval := flag.Int("r", config.ReportInterval, "report interval in seconds")
	flag.Parse()

	envStrVars := map[string]*string{
		"ADDRESS": address,
		"KEY":     key,
		"PROJECT": project,
	}
	for envVar, flag := range envStrVars {
		if envValue := os.Getenv(envVar); envValue != "" {
			*flag = envValue
		}
	}

	if envInterval := os.Getenv("REPORT_INTERVAL"); envInterval != "" {
		interval, err := strconv.Atoi(envInterval)
		if err != nil {
			log.Fatalf("Invalid REPORT_INTERVAL value: %s", envInterval)
		}
		*reportInterval = interval
	}

	config.Address = *address
	config.Key = *key
	config.Project = *project
	config.ReportInterval = *reportInterval

	return config, nil
}
