package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/localnerve/foodgram/data"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	appImageName     = "foodgram-test:latest"
	authzNetworkName = "authorizer"
)

type TestContainers struct {
	Network             *testcontainers.DockerNetwork
	DBContainer         testcontainers.Container
	AuthorizerContainer testcontainers.Container
	AppContainer        testcontainers.Container
	AppBuilderContainer testcontainers.Container

	// DBHost and DBPort reach the database from the test process
	DBHost string
	DBPort string
	// BaseURL reaches the app container from the test process
	BaseURL string
}

func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	for _, c := range []struct {
		name      string
		container testcontainers.Container
	}{
		{"Foodgram", tc.AppContainer},
		{"Foodgram Builder", tc.AppBuilderContainer},
		{"Authorizer", tc.AuthorizerContainer},
		{"MariaDB", tc.DBContainer},
	} {
		if c.container == nil {
			continue
		}
		if err := c.container.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate %s: %v", c.name, err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// StartDatabase starts the DB_IMAGE container on a new network and
// initializes the foodgram schema and service account.
func StartDatabase(t *testing.T) (*TestContainers, error) {
	ctx := context.Background()
	tc := &TestContainers{}

	nw, err := network.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}
	tc.Network = nw

	dbPortNumber := getEnvDefault("DB_PORT", "3306")
	tcpDbPort, err := nat.NewPort("tcp", dbPortNumber)
	if err != nil {
		tc.Terminate(t)
		return nil, fmt.Errorf("failed to create DB port: %w", err)
	}
	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("DB_IMAGE"),
			ExposedPorts: []string{string(tcpDbPort)},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": os.Getenv("DB_ROOT_PASSWORD"),
			},
			WaitingFor: wait.ForListeningPort(tcpDbPort).WithStartupTimeout(60 * time.Second),
			Networks:   []string{nw.Name},
			NetworkAliases: map[string][]string{
				nw.Name: {getEnvDefault("DB_HOST", "mariadb")},
			},
		},
		Started: true,
	})
	if err != nil {
		tc.Terminate(t)
		return nil, fmt.Errorf("failed to start database: %w", err)
	}
	tc.DBContainer = dbContainer

	dbHost, _ := dbContainer.Host(ctx)
	dbPort, _ := dbContainer.MappedPort(ctx, tcpDbPort)
	tc.DBHost, tc.DBPort = dbHost, dbPort.Port()

	if err := initMariaDB(tc.DBHost, tc.DBPort); err != nil {
		tc.Terminate(t)
		return nil, fmt.Errorf("failed to initialize databases: %w", err)
	}
	return tc, nil
}

// CreateAllTestContainers starts the database, the Authorizer and the app
// built from the repository Dockerfile.
func CreateAllTestContainers(t *testing.T) (*TestContainers, error) {
	ctx := context.Background()
	debugContainer := os.Getenv("DEBUG_CONTAINER")

	tc, err := StartDatabase(t)
	if err != nil {
		exitWithError(t, err, "Failed to start database")
	}
	networkName := tc.Network.Name
	dbNetworkName := getEnvDefault("DB_HOST", "mariadb")
	dbPortNumber := getEnvDefault("DB_PORT", "3306")

	tcpAuthzPort, err := nat.NewPort("tcp", os.Getenv("AUTHZ_PORT"))
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to create Authorizer port")
	}
	authzLogLevel := "info"
	if debugContainer == "true" {
		authzLogLevel = "debug"
	}
	authorizerContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("AUTHZ_IMAGE"),
			ExposedPorts: []string{string(tcpAuthzPort)},
			Env: map[string]string{
				"ENV":           "production",
				"CLIENT_ID":     os.Getenv("AUTHZ_CLIENT_ID"),
				"PORT":          os.Getenv("AUTHZ_PORT"),
				"DATABASE_TYPE": "mariadb",
				"DATABASE_NAME": os.Getenv("AUTHZ_DATABASE"),
				"DATABASE_URL": fmt.Sprintf("root:%s@tcp(%s:%s)/%s",
					os.Getenv("DB_ROOT_PASSWORD"), dbNetworkName, dbPortNumber, os.Getenv("AUTHZ_DATABASE")),
				"ADMIN_SECRET":  os.Getenv("AUTHZ_ADMIN_SECRET"),
				"ROLES":         "admin,user",
				"DEFAULT_ROLES": "user",
				"LOG_LEVEL":     authzLogLevel,
			},
			WaitingFor: wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(10 * time.Second),
			Networks:   []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {authzNetworkName},
			},
		},
		Started: true,
	})
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to start Authorizer")
	}
	tc.AuthorizerContainer = authorizerContainer

	authzHost, _ := authorizerContainer.Host(ctx)
	authzPort, _ := authorizerContainer.MappedPort(ctx, tcpAuthzPort)
	logMessage(t, "AUTHZ_URL=http://%s:%s", authzHost, authzPort.Port())

	exists, err := imageExists(ctx, appImageName)
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to check if image exists")
	}

	appPortNumber := getEnvDefault("PORT", "3000")
	tcpAppPort, err := nat.NewPort("tcp", appPortNumber)
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to create Foodgram port")
	}

	exposedPorts := []string{string(tcpAppPort)}
	if debugContainer == "true" {
		exposedPorts = append(exposedPorts, "2345/tcp")
	}
	hostConfigModifier := func(hostConfig *container.HostConfig) {
		if debugContainer == "true" {
			hostConfig.PortBindings = nat.PortMap{
				"2345/tcp": []nat.PortBinding{
					{HostIP: "127.0.0.1", HostPort: "2345"},
				},
			}
			hostConfig.CapAdd = []string{"SYS_PTRACE"}
			hostConfig.SecurityOpt = []string{"apparmor:unconfined"}
		}
	}

	var waitStrategy wait.Strategy
	waitStrategy = wait.ForHTTP("/metrics").WithPort(tcpAppPort).WithStartupTimeout(30 * time.Second)
	if debugContainer == "true" {
		waitStrategy = wait.ForLog("API server listening at: [::]:2345").WithStartupTimeout(5 * time.Minute)
	}

	appRequest := testcontainers.ContainerRequest{
		ExposedPorts: exposedPorts,
		Env: map[string]string{
			"DB_TYPE":              "mariadb",
			"DB_HOST":              dbNetworkName,
			"DB_PORT":              dbPortNumber,
			"DB_DATABASE":          getEnvDefault("DB_DATABASE", "foodgram"),
			"DB_USER":              getEnvDefault("DB_USER", "foodgram"),
			"DB_PASSWORD":          os.Getenv("DB_PASSWORD"),
			"DB_CONNECTION_LIMIT":  getEnvDefault("DB_CONNECTION_LIMIT", "5"),
			"TOKEN_SECRET":         getEnvDefault("TOKEN_SECRET", uuid.NewString()),
			"AUTHZ_URL":            fmt.Sprintf("http://%s:%s", authzNetworkName, os.Getenv("AUTHZ_PORT")),
			"AUTHZ_CLIENT_ID":      os.Getenv("AUTHZ_CLIENT_ID"),
			"SHOPPING_LIST_FORMAT": "txt",
			"PORT":                 appPortNumber,
		},
		HostConfigModifier: hostConfigModifier,
		WaitingFor:         waitStrategy,
		Networks:           []string{networkName},
	}
	if debugContainer == "true" {
		appRequest.Entrypoint = []string{
			"/usr/local/bin/dlv",
			"--listen=:2345",
			"--headless=true",
			"--api-version=2",
			"--accept-multiclient",
			"exec",
			"./foodgram",
		}
	}

	if !exists {
		sessionID := uuid.New().String()
		buildArgs := map[string]*string{
			"RESOURCE_REAPER_SESSION_ID": &sessionID,
		}
		if debugContainer == "true" {
			buildArgs["DEBUG"] = &debugContainer
		}
		buildContext := getEnvDefault("TESTCONTAINERS_BUILD_CONTEXT", "../..")

		logMessage(t, "Image %s does not exist, building...", appImageName)
		builder, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				FromDockerfile: testcontainers.FromDockerfile{
					Context:    buildContext,
					Dockerfile: "Dockerfile",
					Repo:       "foodgram-test-builder",
					Tag:        "latest",
					BuildArgs:  buildArgs,
					BuildOptionsModifier: func(opts *build.ImageBuildOptions) {
						opts.Target = "builder"
					},
					PrintBuildLog: true,
				},
			},
			Started: false,
		})
		if err != nil {
			tc.Terminate(t)
			exitWithError(t, err, "Failed to build foodgram-test-builder")
		}
		tc.AppBuilderContainer = builder

		repo, tag, _ := strings.Cut(appImageName, ":")
		appRequest.FromDockerfile = testcontainers.FromDockerfile{
			Context:    buildContext,
			Dockerfile: "Dockerfile",
			Repo:       repo,
			Tag:        tag,
			KeepImage:  true,
			BuildArgs:  buildArgs,
			BuildOptionsModifier: func(opts *build.ImageBuildOptions) {
				opts.Target = "runtime"
			},
			PrintBuildLog: true,
		}
	} else {
		logMessage(t, "Image %s exists, reusing...", appImageName)
		appRequest.Image = appImageName
	}

	appContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: appRequest,
		Started:          true,
	})
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to start Foodgram")
	}
	tc.AppContainer = appContainer

	appHost, _ := appContainer.Host(ctx)
	appPort, _ := appContainer.MappedPort(ctx, tcpAppPort)
	tc.BaseURL = fmt.Sprintf("http://%s:%s", appHost, appPort.Port())
	logMessage(t, "BASE_URL=%s", tc.BaseURL)

	logMessage(t, "Foodgram testcontainers started successfully")
	return tc, nil
}

func initMariaDB(host, port string) error {
	db, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/?multiStatements=false", os.Getenv("DB_ROOT_PASSWORD"), host, port))
	if err != nil {
		return fmt.Errorf("failed to connect to MariaDB for setup: %w", err)
	}
	defer db.Close()

	for i := 0; i < 30; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return fmt.Errorf("MariaDB not ready after 30 seconds: %w", err)
	}

	appDatabase := getEnvDefault("DB_DATABASE", "foodgram")
	statements := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", appDatabase),
		fmt.Sprintf("CREATE USER IF NOT EXISTS '%s'@'%%' IDENTIFIED BY '%s'", getEnvDefault("DB_USER", "foodgram"), os.Getenv("DB_PASSWORD")),
	}
	if authzDatabase := os.Getenv("AUTHZ_DATABASE"); authzDatabase != "" {
		statements = append(statements,
			fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", authzDatabase),
			fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.authorizer_users (id CHAR(36) NOT NULL PRIMARY KEY)", authzDatabase),
		)
	}
	statements = append(statements, "USE "+appDatabase)
	statements = append(statements, splitStatements(data.InitdbMariaDBTables)...)
	statements = append(statements, splitStatements(data.InitdbMariaDBPrivileges)...)

	// USE only holds for the connection it ran on
	conn, err := db.Conn(context.Background())
	if err != nil {
		return err
	}
	defer conn.Close()
	for _, q := range statements {
		if _, err := conn.ExecContext(context.Background(), q); err != nil {
			return fmt.Errorf("%s : when executing > %s", err.Error(), q)
		}
	}
	return nil
}

// splitStatements drops "--" comments outside of quotes and splits on ";".
func splitStatements(script string) []string {
	var cleaned strings.Builder
	for _, line := range strings.Split(script, "\n") {
		cleaned.WriteString(stripComment(line))
		cleaned.WriteByte('\n')
	}

	var statements []string
	for _, q := range strings.Split(cleaned.String(), ";") {
		if q = strings.TrimSpace(q); q != "" {
			statements = append(statements, q)
		}
	}
	return statements
}

func stripComment(line string) string {
	var quote byte
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == '-' && i+1 < len(line) && line[i+1] == '-':
			return line[:i]
		}
	}
	return line
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, image := range images {
		for _, tag := range image.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
